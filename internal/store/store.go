package store

import (
	"context"
	"time"

	"github.com/nhle/reply-desk/internal/model"
)

// ActivityFilter narrows activity queries. Zero values match everything.
type ActivityFilter struct {
	Action  model.ActivityAction
	EmailID int64
	Since   time.Time
	Limit   int
}

// Journal records what the operator did to each email. It is local to
// this machine and independent of the backend's own audit trail.
type Journal interface {
	RecordActivity(ctx context.Context, a model.Activity) error
	RecentActivity(ctx context.Context, filter ActivityFilter) ([]model.Activity, error)
	CountActivity(ctx context.Context, filter ActivityFilter) (int, error)
}

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/reply-desk/internal/model"
	"github.com/nhle/reply-desk/internal/store"
	"github.com/nhle/reply-desk/internal/testutil"
)

func TestMigrationsApplied(t *testing.T) {
	s := testutil.NewTestStore(t)
	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestRecordAndQueryActivity(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	cat := int64(3)
	now := time.Now().UTC()

	require.NoError(t, s.RecordActivity(ctx, model.Activity{
		EmailID: 1, Action: model.ActivitySent, Subject: "Refund", Sender: "a@b.c",
		CategoryID: &cat, CreatedAt: now.Add(-30 * time.Hour),
	}))
	require.NoError(t, s.RecordActivity(ctx, model.Activity{
		EmailID: 2, Action: model.ActivitySent, Subject: "Shipping", CreatedAt: now.Add(-time.Hour),
	}))
	require.NoError(t, s.RecordActivity(ctx, model.Activity{
		EmailID: 3, Action: model.ActivityDeleted, CreatedAt: now,
	}))

	all, err := s.RecentActivity(ctx, store.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].EmailID)
	assert.NotEmpty(t, all[0].ID)
	assert.Nil(t, all[0].CategoryID)
	require.NotNil(t, all[2].CategoryID)
	assert.Equal(t, cat, *all[2].CategoryID)

	sentToday, err := s.CountActivity(ctx, store.ActivityFilter{
		Action: model.ActivitySent,
		Since:  now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sentToday)

	limited, err := s.RecentActivity(ctx, store.ActivityFilter{Action: model.ActivitySent, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "Shipping", limited[0].Subject)

	forEmail, err := s.CountActivity(ctx, store.ActivityFilter{EmailID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, forEmail)
}

func TestRecordActivityValidates(t *testing.T) {
	s := testutil.NewTestStore(t)
	assert.Error(t, s.RecordActivity(context.Background(), model.Activity{Action: model.ActivitySent}))
	assert.Error(t, s.RecordActivity(context.Background(), model.Activity{EmailID: 1}))
}

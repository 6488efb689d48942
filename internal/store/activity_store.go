package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/reply-desk/internal/model"
)

var _ Journal = (*SQLiteStore)(nil)

// RecordActivity appends one journal row. ID and CreatedAt are filled in
// when empty.
func (s *SQLiteStore) RecordActivity(ctx context.Context, a model.Activity) error {
	if a.EmailID == 0 {
		return fmt.Errorf("activity email id must be set")
	}
	if a.Action == "" {
		return fmt.Errorf("activity action must be set")
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO activity (id, email_id, action, subject, sender, category_id, created_at)
		VALUES (:id, :email_id, :action, :subject, :sender, :category_id, :created_at)`,
		map[string]any{
			"id":          a.ID,
			"email_id":    a.EmailID,
			"action":      string(a.Action),
			"subject":     a.Subject,
			"sender":      a.Sender,
			"category_id": a.CategoryID,
			"created_at":  a.CreatedAt.UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("recording %s for email %d: %w", a.Action, a.EmailID, err)
	}
	return nil
}

func whereActivity(f ActivityFilter) (string, []any) {
	var conditions []string
	var args []any
	if f.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, string(f.Action))
	}
	if f.EmailID != 0 {
		conditions = append(conditions, "email_id = ?")
		args = append(args, f.EmailID)
	}
	if !f.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// RecentActivity returns matching rows, newest first.
func (s *SQLiteStore) RecentActivity(ctx context.Context, f ActivityFilter) ([]model.Activity, error) {
	where, args := whereActivity(f)
	query := "SELECT id, email_id, action, subject, sender, category_id, created_at FROM activity" +
		where + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	var out []model.Activity
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	return out, nil
}

// CountActivity returns the number of matching rows.
func (s *SQLiteStore) CountActivity(ctx context.Context, f ActivityFilter) (int, error) {
	where, args := whereActivity(f)
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM activity"+where, args...); err != nil {
		return 0, fmt.Errorf("counting activity: %w", err)
	}
	return n, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// NotificationRepository remembers which exchange notifications the user has
// already seen, so restarts do not replay old alerts.
type NotificationRepository interface {
	MarkSeen(ctx context.Context, ids []string) error
	SeenIDs(ctx context.Context) (map[string]bool, error)
	IsSeen(ctx context.Context, id string) (bool, error)
}

type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a notification repository.
func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) MarkSeen(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	for _, id := range ids {
		if id == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications_seen (id, seen_at) VALUES (?, ?)
			ON CONFLICT(id) DO NOTHING
		`, id, now)
		if err != nil {
			return fmt.Errorf("mark notification %s seen: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seen notifications: %w", err)
	}
	return nil
}

func (r *notificationRepository) SeenIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM notifications_seen`)
	if err != nil {
		return nil, fmt.Errorf("list seen notifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seen notification: %w", err)
		}
		seen[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seen notifications: %w", err)
	}
	return seen, nil
}

func (r *notificationRepository) IsSeen(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications_seen WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check notification %s: %w", id, err)
	}
	return n > 0, nil
}

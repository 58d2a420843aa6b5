package database

import (
	"context"

	"github.com/google/uuid"
)

// --- Notification Queries ---
//
// Notifications are the persistent half of the admin event stream: every new
// contact message, review, or registration inserts a row here and broadcasts
// over SSE to any connected admin.

func (s *Service) CreateNotification(ctx context.Context, db DBorTx, kind, title, body string) (*Notification, error) {
	id := uuid.NewString()
	query := `INSERT INTO notifications (id, kind, title, body) VALUES (?, ?, ?, ?);`
	if _, err := db.ExecContext(ctx, query, id, kind, title, body); err != nil {
		return nil, classify(err)
	}

	n := &Notification{}
	err := db.QueryRowContext(ctx,
		`SELECT id, kind, title, body, is_read, created_at FROM notifications WHERE id = ?;`, id).
		Scan(&n.ID, &n.Kind, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return n, nil
}

// ListNotifications returns one page, newest first, optionally unread only.
func (s *Service) ListNotifications(ctx context.Context, db DBorTx, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	where := ""
	if unreadOnly {
		where = " WHERE is_read = 0"
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+where+`;`).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := `SELECT id, kind, title, body, is_read, created_at
			  FROM notifications` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?;`
	rows, err := db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, classify(err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(err)
	}
	return notifications, total, nil
}

// MarkNotificationRead is idempotent: re-marking a read notification succeeds.
func (s *Service) MarkNotificationRead(ctx context.Context, db DBorTx, id string) error {
	if err := ValidateID("notification id", id); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?;`, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UnreadNotificationCount backs the badge in the admin header.
func (s *Service) UnreadNotificationCount(ctx context.Context, db DBorTx) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE is_read = 0;`).Scan(&count)
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

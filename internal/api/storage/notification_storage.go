package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/model"
)

const notificationColumns = `
	notification_id, message_id, recipient, sender, type, title,
	message, related_job, is_read, created_at`

type NotificationPage struct {
	Notifications []domain.Notification
	Total         int
	UnreadCount   int
}

// ListNotifications returns one page of recipient's inbox, newest first
func (s *Storage) ListNotifications(ctx context.Context, recipient string, filter domain.NotificationFilter) (*NotificationPage, error) {
	w := &whereBuilder{}
	w.add("recipient = $%d", recipient)
	if filter.Type != "" {
		w.add("type = $%d", filter.Type)
	}
	if filter.IsRead != nil {
		w.add("is_read = $%d", *filter.IsRead)
	}

	page := &NotificationPage{}
	countQuery := `SELECT COUNT(*) FROM notifications` + w.clause()
	if err := s.db.GetContext(ctx, &page.Total, countQuery, w.args...); err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	unreadQuery := `SELECT COUNT(*) FROM notifications WHERE recipient = $1 AND is_read = FALSE`
	if err := s.db.GetContext(ctx, &page.UnreadCount, unreadQuery, recipient); err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications` + w.clause()
	query += " ORDER BY created_at DESC, notification_id DESC"
	query += " LIMIT " + w.next(filter.Limit)
	query += " OFFSET " + w.next((filter.Page-1)*filter.Limit)

	var rows []model.Notification
	if err := s.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	page.Notifications = make([]domain.Notification, 0, len(rows))
	for i := range rows {
		page.Notifications = append(page.Notifications, rows[i].ToDomain())
	}
	return page, nil
}

// MarkNotificationRead flags one of recipient's notifications as read
func (s *Storage) MarkNotificationRead(ctx context.Context, recipient, notificationID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE notification_id = $1 AND recipient = $2`,
		notificationID, recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireAffected(res, domain.ErrNotificationNotFound)
}

// MarkAllNotificationsRead flags every unread notification of recipient and
// returns how many changed.
func (s *Storage) MarkAllNotificationsRead(ctx context.Context, recipient string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient = $1 AND is_read = FALSE`,
		recipient,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}

func (s *Storage) DeleteNotification(ctx context.Context, recipient, notificationID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE notification_id = $1 AND recipient = $2`,
		notificationID, recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return requireAffected(res, domain.ErrNotificationNotFound)
}

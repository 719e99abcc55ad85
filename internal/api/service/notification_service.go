package service

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/storage"
)

type NotificationStore interface {
	ListNotifications(ctx context.Context, recipient string, filter domain.NotificationFilter) (*storage.NotificationPage, error)
	MarkNotificationRead(ctx context.Context, recipient, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, recipient string) (int64, error)
	DeleteNotification(ctx context.Context, recipient, notificationID string) error
}

// NotificationService serves the inbox the notification worker fills
type NotificationService struct {
	store  NotificationStore
	logger *slog.Logger
}

func NewNotificationService(store NotificationStore, logger *slog.Logger) *NotificationService {
	return &NotificationService{store: store, logger: logger}
}

func (s *NotificationService) List(ctx context.Context, actor domain.Actor, filter domain.NotificationFilter) (*storage.NotificationPage, error) {
	page, err := s.store.ListNotifications(ctx, actor.UserID, filter)
	if err != nil {
		return nil, wrapStoreErr(s.logger, "list_notifications", err)
	}
	return page, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, notificationID string) error {
	if err := s.store.MarkNotificationRead(ctx, actor.UserID, notificationID); err != nil {
		return wrapStoreErr(s.logger, "mark_notification_read", err)
	}
	return nil
}

// MarkAllRead returns how many notifications changed
func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Actor) (int64, error) {
	n, err := s.store.MarkAllNotificationsRead(ctx, actor.UserID)
	if err != nil {
		return 0, wrapStoreErr(s.logger, "mark_all_notifications_read", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, actor domain.Actor, notificationID string) error {
	if err := s.store.DeleteNotification(ctx, actor.UserID, notificationID); err != nil {
		return wrapStoreErr(s.logger, "delete_notification", err)
	}
	return nil
}

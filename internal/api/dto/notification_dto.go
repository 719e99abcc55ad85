package dto

import (
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
)

type ListNotificationsRequest struct {
	Type   string `form:"type"`
	IsRead *bool  `form:"isRead"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type NotificationResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Sender     string    `json:"sender,omitempty"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	RelatedJob string    `json:"relatedJob,omitempty"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ListNotificationsResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unreadCount"`
	Pagination    Pagination             `json:"pagination"`
}

type MarkAllReadResponse struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

func NewNotificationResponses(ns []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, NotificationResponse{
			ID:         n.ID,
			Type:       string(n.Type),
			Sender:     n.Sender,
			Title:      n.Title,
			Message:    n.Message,
			RelatedJob: n.RelatedJob,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt,
		})
	}
	return out
}

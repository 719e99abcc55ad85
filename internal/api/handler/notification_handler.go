package handler

import (
	"fmt"
	"net/http"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/dto"
	"github.com/gin-gonic/gin"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

// ListNotifications handles GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters", "Please check your filters and try again")
		return
	}

	filter := domain.NotificationFilter{
		Type:   req.Type,
		IsRead: req.IsRead,
		Page:   req.Page,
		Limit:  req.Limit,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultNotificationLimit
	}
	if filter.Limit > maxNotificationLimit {
		filter.Limit = maxNotificationLimit
	}

	page, err := h.notifications.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, h.logger, "list_notifications", err)
		return
	}

	c.JSON(http.StatusOK, dto.ListNotificationsResponse{
		Notifications: dto.NewNotificationResponses(page.Notifications),
		UnreadCount:   page.UnreadCount,
		Pagination: dto.Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: page.Total,
			Pages: pageCount(page.Total, filter.Limit),
		},
	})
}

// MarkRead handles PATCH /api/v1/notifications/:notification_id/read.
// The id "all" marks every notification of the caller.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if c.Param("notification_id") == "all" {
		n, err := h.notifications.MarkAllRead(c.Request.Context(), actor)
		if err != nil {
			respondError(c, h.logger, "mark_all_read", err)
			return
		}
		c.JSON(http.StatusOK, dto.MarkAllReadResponse{
			Message: fmt.Sprintf("%d notifications marked as read", n),
			Updated: n,
		})
		return
	}

	id, ok := idParam(c, "notification_id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, "mark_read", err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Notification marked as read",
		Alert:   "Notification updated",
	})
}

// DeleteNotification handles DELETE /api/v1/notifications/:notification_id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "notification_id")
	if !ok {
		return
	}

	if err := h.notifications.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, "delete_notification", err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Notification deleted",
		Alert:   "Notification removed",
	})
}

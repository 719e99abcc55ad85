package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		abortUnauthorized(c, "No token, authorization denied")
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateProfile handles PATCH /api/v1/users/me
// Only barangay and skills may change; both feed the matcher.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", "Please check your profile details and try again")
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), actor, domain.ProfileUpdate{
		Barangay: req.Barangay,
		Skills:   req.Skills,
	})
	if err != nil {
		respondError(c, h.logger, "update_profile", err)
		return
	}

	h.logger.Info("Profile updated",
		slog.String("user_id", user.ID),
		slog.String("barangay", user.Barangay),
		slog.Int("skills", len(user.Skills)),
	)

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

const (
	defaultWorkerLimit = 20
	maxWorkerLimit     = 100
)

// ListWorkers handles GET /api/v1/users/workers
// Browses verified workers by barangay, skill and name
func (h *UserHandler) ListWorkers(c *gin.Context) {
	var req dto.ListWorkersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters", "Please check your filters and try again")
		return
	}

	filter := domain.WorkerFilter{
		Barangay: req.Barangay,
		Skills:   strings.Split(req.Skill, ","),
		Search:   req.Search,
		Page:     req.Page,
		Limit:    req.Limit,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultWorkerLimit
	}
	if filter.Limit > maxWorkerLimit {
		filter.Limit = maxWorkerLimit
	}

	users, total, err := h.users.ListWorkers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, "list_workers", err)
		return
	}

	alert := "No workers found matching your criteria"
	if len(users) > 0 {
		alert = fmt.Sprintf("Found %d workers", total)
	}

	c.JSON(http.StatusOK, dto.ListWorkersResponse{
		Success: true,
		Users:   dto.NewWorkerResponses(users),
		Pagination: dto.Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: pageCount(total, filter.Limit),
		},
		Alert: alert,
	})
}

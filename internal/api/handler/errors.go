package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func statusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation, domain.KindPrecondition:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as the client-facing error body. Store failures
// keep their cause in the log only.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		derr = domain.StoreError(err)
	}

	status := statusOf(derr.Kind)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			slog.String("operation", op),
			slog.Any("error", err),
		)
		_ = c.Error(err)
	} else {
		logger.Debug("Request rejected",
			slog.String("operation", op),
			slog.String("kind", derr.Kind.String()),
			slog.String("reason", derr.Message),
		)
	}

	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Message:  derr.Message,
		Alert:    derr.Alert,
		Required: derr.Fields,
	})
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: message})
}

func badRequest(c *gin.Context, message, alert string, fields ...string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{
		Message:  message,
		Alert:    alert,
		Required: fields,
	})
}

// idParam reads a UUID path parameter, answering 400 when it is malformed
func idParam(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, "Invalid "+name, name+" must be a valid UUID", name)
		return "", false
	}
	return id, true
}

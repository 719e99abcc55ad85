package router

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/dto"
	"github.com/cuongbtq/barangay-gigs/internal/api/handler"
	"github.com/cuongbtq/barangay-gigs/internal/auth"
	"github.com/cuongbtq/barangay-gigs/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// TokenValidator verifies a bearer token and returns its claims
type TokenValidator interface {
	Validate(token string) (auth.Claims, error)
}

// UserLookup loads the caller named by a token
type UserLookup interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// HTTPMetrics records request outcomes
type HTTPMetrics interface {
	RecordHTTPRequest(route, method string, status int, d time.Duration)
	RecordRateLimited()
}

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		attrs := []any{
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Duration("latency", latency),
			slog.Int("body_size", c.Writer.Size()),
		}
		if user, ok := handler.CurrentUser(c); ok {
			attrs = append(attrs, slog.String("user_id", user.ID))
		}
		logger.Info("HTTP Request", attrs...)

		for _, e := range c.Errors {
			logger.Error("Request error",
				slog.String("error", e.Error()),
				slog.Uint64("type", uint64(e.Type)),
			)
		}
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// AuthMiddleware resolves the bearer token to a verified user. The role used
// for authorization is the stored one, not the one in the token.
func AuthMiddleware(tokens TokenValidator, users UserLookup, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, http.StatusUnauthorized, "No token, authorization denied", "")
			return
		}

		claims, err := tokens.Validate(raw)
		if err != nil {
			msg := "Token is not valid"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "Token has expired"
			}
			abort(c, http.StatusUnauthorized, msg, "Please log in again")
			return
		}

		user, err := users.Me(c.Request.Context(), claims.UserID)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			abort(c, http.StatusUnauthorized, "User not found", "Please log in again")
			return
		case err != nil:
			logger.Error("Failed to load authenticated user",
				slog.String("user_id", claims.UserID),
				slog.Any("error", err),
			)
			abort(c, http.StatusInternalServerError, "Internal server error", "Something went wrong. Please try again.")
			return
		}

		if !user.Verified {
			abort(c, http.StatusForbidden, "Account not verified", "Please verify your account first")
			return
		}

		handler.SetUser(c, user)
		c.Next()
	}
}

// RateLimitMiddleware throttles per caller, keyed by user id when
// authenticated and by client IP otherwise
func RateLimitMiddleware(limiter ratelimit.Limiter, m HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if user, ok := handler.CurrentUser(c); ok {
			key = "user:" + user.ID
		}

		if !limiter.Allow(c.Request.Context(), key) {
			if m != nil {
				m.RecordRateLimited()
			}
			c.Header("Retry-After", "60")
			abort(c, http.StatusTooManyRequests, "Too many requests", "Please slow down and try again shortly")
			return
		}

		c.Next()
	}
}

// MetricsMiddleware records one observation per request, labelled by route template
func MetricsMiddleware(m HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.RecordHTTPRequest(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

func abort(c *gin.Context, status int, message, alert string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Message: message, Alert: alert})
}

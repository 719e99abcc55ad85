package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/handler"
	"github.com/cuongbtq/barangay-gigs/internal/metrics"
	"github.com/cuongbtq/barangay-gigs/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether one backing service is reachable
type HealthCheck func(ctx context.Context) error

// Options carries the cross-cutting pieces the router wires around handlers.
// Nil Limiter, Metrics or Gatherer disable the matching feature.
type Options struct {
	Service      string
	Tokens       TokenValidator
	Limiter      ratelimit.Limiter
	Metrics      HTTPMetrics
	Gatherer     prometheus.Gatherer
	MetricsPath  string
	HealthChecks map[string]HealthCheck
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())
	if opts.Metrics != nil {
		r.Use(MetricsMiddleware(opts.Metrics))
	}

	r.GET("/health", healthHandler(opts.Service, opts.HealthChecks, deps.Logger))
	if opts.Gatherer != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler(opts.Gatherer)))
	}

	jobHandler := handler.NewJobHandler(deps)
	notificationHandler := handler.NewNotificationHandler(deps)
	userHandler := handler.NewUserHandler(deps)

	var public, protected []gin.HandlerFunc
	protected = append(protected, AuthMiddleware(opts.Tokens, deps.Users, deps.Logger))
	if opts.Limiter != nil {
		public = append(public, RateLimitMiddleware(opts.Limiter, opts.Metrics))
		protected = append(protected, RateLimitMiddleware(opts.Limiter, opts.Metrics))
	}

	v1 := r.Group("/api/v1")
	{
		open := v1.Group("/jobs", public...)
		{
			open.GET("", jobHandler.ListJobs)
			open.GET("/search", jobHandler.SearchJobs)
			open.GET("/popular", jobHandler.PopularJobs)
			open.GET("/:job_id", jobHandler.GetJob)
		}

		jobs := v1.Group("/jobs", protected...)
		{
			jobs.POST("", jobHandler.CreateJob)
			jobs.GET("/matches", jobHandler.Matches)
			jobs.GET("/my-jobs", jobHandler.MyJobs)
			jobs.GET("/my-applications", jobHandler.MyApplications)
			jobs.GET("/my-applications-received", jobHandler.ApplicationsReceived)

			jobs.POST("/:job_id/apply", jobHandler.Apply)
			jobs.DELETE("/:job_id/cancel-application", jobHandler.CancelApplication)
			jobs.POST("/:job_id/assign", jobHandler.Assign)
			jobs.POST("/:job_id/reject", jobHandler.Reject)
			jobs.PUT("/:job_id/applicants/:user_id", jobHandler.SetApplicantStatus)
			jobs.PUT("/:job_id/close", jobHandler.CloseJob)
			jobs.DELETE("/:job_id", jobHandler.DeleteJob)
		}

		notifications := v1.Group("/notifications", protected...)
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PATCH("/:notification_id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:notification_id", notificationHandler.DeleteNotification)
		}

		users := v1.Group("/users", protected...)
		{
			users.GET("/me", userHandler.Me)
			users.PATCH("/me", userHandler.UpdateProfile)
			users.GET("/workers", userHandler.ListWorkers)
		}
	}

	return r
}

func healthHandler(service string, checks map[string]HealthCheck, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warn("Health check failed",
					slog.String("check", name),
					slog.Any("error", err),
				)
				results[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "up"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":  state,
			"service": service,
			"checks":  results,
		})
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/handler"
	"github.com/cuongbtq/barangay-gigs/internal/api/router"
	"github.com/cuongbtq/barangay-gigs/internal/api/service"
	"github.com/cuongbtq/barangay-gigs/internal/api/storage"
	"github.com/cuongbtq/barangay-gigs/internal/auth"
	"github.com/cuongbtq/barangay-gigs/internal/config"
	"github.com/cuongbtq/barangay-gigs/internal/database"
	"github.com/cuongbtq/barangay-gigs/internal/metrics"
	"github.com/cuongbtq/barangay-gigs/internal/notify"
	"github.com/cuongbtq/barangay-gigs/internal/ratelimit"
	"github.com/cuongbtq/barangay-gigs/internal/sanitize"
	"github.com/cuongbtq/barangay-gigs/shared/logger"
	"github.com/cuongbtq/barangay-gigs/shared/postgresql"
	"github.com/cuongbtq/barangay-gigs/shared/rabbitmq"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

const limiterCleanupInterval = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logging.Logger())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	pgConfig := cfg.Database.Postgres()
	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(pgConfig.URL()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		appLogger.Info("Database migrations applied")
	}

	dbClient, err := postgresql.NewClient(pgConfig, appLogger.Component("postgresql"))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	appLogger.Info("Database connection established")

	rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQ.Client(), appLogger.Component("rabbitmq"))
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
	}
	defer rabbitClient.Close()

	appLogger.Info("RabbitMQ connection established")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	limiter, closeLimiter, err := initRateLimiter(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	defer closeLimiter()

	store := storage.NewStorage(dbClient, appLogger.Component("storage"))
	sanitizer := sanitize.New()
	publisher := notify.NewPublisher(rabbitClient, collector, appLogger.Component("notifier"), cfg.RabbitMQ.Publish.Timeout)

	jobService := service.NewJobService(store, store, publisher, collector, sanitizer, appLogger.Component("job_service"))
	notificationService := service.NewNotificationService(store, appLogger.Component("notification_service"))
	userService := service.NewUserService(store, sanitizer, appLogger.Component("user_service"))

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	deps := &handler.Dependencies{
		Logger:        appLogger.Component("http"),
		Jobs:          jobService,
		Notifications: notificationService,
		Users:         userService,
		Limits: handler.Limits{
			MatchDefault: cfg.Match.DefaultLimit,
			MatchMax:     cfg.Match.MaxLimit,
		},
	}

	opts := router.Options{
		Service: cfg.App.Name,
		Tokens:  auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Limiter: limiter,
		Metrics: collector,
		HealthChecks: map[string]router.HealthCheck{
			"database": dbClient.HealthCheck,
			"rabbitmq": func(context.Context) error {
				if !rabbitClient.IsConnected() {
					return rabbitmq.ErrNotConnected
				}
				return nil
			},
		},
	}
	if cfg.Metrics.Enabled {
		opts.Gatherer = registry
		opts.MetricsPath = cfg.Metrics.Path
	}

	r := router.SetupRouter(deps, opts)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting HTTP server",
			slog.String("address", addr),
			slog.Duration("read_timeout", cfg.Server.ReadTimeout),
			slog.Duration("write_timeout", cfg.Server.WriteTimeout),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initRateLimiter picks the Redis limiter when an address is configured so
// replicas share budgets, and the in-process limiter otherwise
func initRateLimiter(cfg *config.Config, appLogger *logger.Logger) (ratelimit.Limiter, func(), error) {
	if !cfg.RateLimit.Enabled {
		return nil, func() {}, nil
	}

	limits := ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
	}

	if cfg.Redis.Addr == "" {
		local := ratelimit.NewLocalLimiter(limits, limiterCleanupInterval)
		appLogger.Info("Using in-process rate limiter",
			slog.Int("requests_per_minute", limits.RequestsPerMinute),
		)
		return local, local.Stop, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	appLogger.Info("Using Redis rate limiter",
		slog.String("addr", cfg.Redis.Addr),
		slog.Int("requests_per_minute", limits.RequestsPerMinute),
	)
	return ratelimit.NewRedisLimiter(client, limits, appLogger.Component("ratelimit")), func() { client.Close() }, nil
}

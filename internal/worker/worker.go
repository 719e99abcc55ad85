// Package worker consumes notification messages from RabbitMQ and stores them
// in the recipients' inboxes.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/notify"
	"github.com/cuongbtq/barangay-gigs/internal/worker/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker is the consuming side of the RabbitMQ client
type Broker interface {
	Qos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// Store persists inbox rows
type Store interface {
	InsertNotification(ctx context.Context, n domain.Notification) (bool, error)
}

type Metrics interface {
	RecordWorkerMessage(result string, d time.Duration)
}

// Config holds worker configuration
type Config struct {
	Logger         *slog.Logger
	Broker         Broker
	Store          Store
	Metrics        Metrics
	WorkerID       string
	QueueName      string
	Concurrency    int
	PrefetchCount  int
	ProcessTimeout time.Duration
}

// task is one decoded delivery waiting for a pool goroutine
type task struct {
	delivery amqp.Delivery
	message  notify.Message
}

// Worker represents the notification worker
type Worker struct {
	logger         *slog.Logger
	broker         Broker
	store          Store
	metrics        Metrics
	workerID       string
	queueName      string
	concurrency    int
	prefetchCount  int
	processTimeout time.Duration
	newID          func() string

	tasks chan *task
	wg    sync.WaitGroup
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	prefetch := cfg.PrefetchCount
	if prefetch < concurrency {
		prefetch = concurrency
	}

	return &Worker{
		logger:         cfg.Logger,
		broker:         cfg.Broker,
		store:          cfg.Store,
		metrics:        cfg.Metrics,
		workerID:       cfg.WorkerID,
		queueName:      cfg.QueueName,
		concurrency:    concurrency,
		prefetchCount:  prefetch,
		processTimeout: cfg.ProcessTimeout,
		newID:          uuid.NewString,
		tasks:          make(chan *task),
	}
}

// Start consumes until ctx is canceled or the broker stops delivering. Messages
// already handed to the pool are finished before Start returns.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("process_timeout", w.processTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)
	err = w.startMessageDispatcher(ctx, deliveries)

	close(w.tasks)
	w.wg.Wait()

	w.logger.Info("Worker stopped", slog.String("worker_id", w.workerID))
	return err
}

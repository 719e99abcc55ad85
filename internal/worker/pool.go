package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	// In-flight messages finish after shutdown is requested
	procCtx := context.WithoutCancel(ctx)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(procCtx, i)
	}
}

// workerLoop processes tasks until the dispatcher closes the channel
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for t := range w.tasks {
		w.handleTask(ctx, workerName, t)
	}

	w.logger.Debug("Worker goroutine stopping - tasks closed",
		slog.String("worker_name", workerName),
	)
}

// handleTask processes one message and settles its delivery
func (w *Worker) handleTask(ctx context.Context, workerName string, t *task) {
	start := time.Now()
	result, err := w.processMessage(ctx, t.message)

	if err == nil {
		if ackErr := t.delivery.Ack(false); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("worker_name", workerName),
				slog.String("message_id", t.message.MessageID),
				slog.String("error", ackErr.Error()),
			)
		}
		w.metrics.RecordWorkerMessage(result, time.Since(start))
		return
	}

	requeue := w.shouldRequeue(err, t.delivery.Redelivered)
	if !requeue && t.delivery.Redelivered {
		err = fmt.Errorf("%w: %v", domain.ErrMaxRetriesExceeded, err)
	}

	w.logger.Error("Notification processing failed",
		slog.String("worker_name", workerName),
		slog.String("message_id", t.message.MessageID),
		slog.Bool("requeue", requeue),
		slog.String("error", err.Error()),
	)

	if nackErr := t.delivery.Nack(false, requeue); nackErr != nil {
		w.logger.Error("Failed to NACK message",
			slog.String("worker_name", workerName),
			slog.String("message_id", t.message.MessageID),
			slog.String("error", nackErr.Error()),
		)
	}

	result = domain.ResultFailed
	if requeue {
		result = domain.ResultRequeued
	}
	w.metrics.RecordWorkerMessage(result, time.Since(start))
}

// shouldRequeue gives a transient failure one more delivery
func (w *Worker) shouldRequeue(err error, redelivered bool) bool {
	var retryableErr *domain.RetryableError
	if !errors.As(err, &retryableErr) {
		return false
	}
	return !redelivered
}

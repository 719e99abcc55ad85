package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/barangay-gigs/internal/notify"
	"github.com/cuongbtq/barangay-gigs/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// setupConsumer sets up RabbitMQ consumer with QoS and returns delivery channel
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	if err := w.broker.Qos(w.prefetchCount); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	w.logger.Info("RabbitMQ QoS configured",
		slog.Int("prefetch_count", w.prefetchCount),
	)

	deliveries, err := w.broker.Consume(w.workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", w.workerID),
		slog.String("queue", w.queueName),
	)

	return deliveries, nil
}

// startMessageDispatcher decodes deliveries and hands them to the pool. It
// returns nil on shutdown and ErrDeliveriesClosed when the broker goes away.
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return nil

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return domain.ErrDeliveriesClosed
			}

			msg, err := notify.Decode(delivery.Body)
			if err != nil {
				w.logger.Error("Dropping malformed notification message",
					slog.String("error", err.Error()),
					slog.String("message_id", delivery.MessageId),
					slog.Int("body_size", len(delivery.Body)),
				)
				// Malformed messages never become valid; dead-letter them
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message",
						slog.String("error", nackErr.Error()),
					)
				}
				w.metrics.RecordWorkerMessage(domain.ResultMalformed, 0)
				continue
			}

			select {
			case w.tasks <- &task{delivery: delivery, message: msg}:
				w.logger.Debug("Notification dispatched to worker pool",
					slog.String("message_id", msg.MessageID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching")
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return nil
			}
		}
	}
}

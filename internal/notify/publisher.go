package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/shared/rabbitmq"
)

// Broker is the part of the RabbitMQ client the publisher needs
type Broker interface {
	PublishWithRetry(ctx context.Context, msg rabbitmq.Message) error
}

type Metrics interface {
	RecordNotificationPublished(notificationType string)
	RecordNotificationFailed(notificationType string)
}

type Publisher struct {
	broker  Broker
	metrics Metrics
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewPublisher(broker Broker, metrics Metrics, logger *slog.Logger, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{
		broker:  broker,
		metrics: metrics,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// Notify publishes one message per effect. Failures are logged and counted
// but never returned; the job write they follow has already committed.
func (p *Publisher) Notify(ctx context.Context, effects []domain.Effect) {
	if len(effects) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.publishAll(ctx, effects); err != nil {
		p.logger.Warn("Some notifications were not published",
			slog.Int("count", len(effects)),
			slog.Any("error", err),
		)
	}
}

func (p *Publisher) publishAll(ctx context.Context, effects []domain.Effect) error {
	var errs []error
	for _, e := range effects {
		msg := NewMessage(e, p.now())
		if err := p.publish(ctx, msg); err != nil {
			p.metrics.RecordNotificationFailed(msg.Type)
			errs = append(errs, fmt.Errorf("%s to %s: %w", msg.Type, msg.Recipient, err))
			continue
		}
		p.metrics.RecordNotificationPublished(msg.Type)
	}
	return errors.Join(errs...)
}

func (p *Publisher) publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	return p.broker.PublishWithRetry(ctx, rabbitmq.Message{
		ID:          msg.MessageID,
		Type:        msg.Type,
		ContentType: ContentType,
		Body:        body,
	})
}

package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/barangay-gigs/internal/notify"
	"github.com/cuongbtq/barangay-gigs/internal/worker/domain"
)

// processMessage writes msg to its recipient's inbox and returns the outcome
// label. Store failures are retryable; a repeated message id is a success.
func (w *Worker) processMessage(ctx context.Context, msg notify.Message) (string, error) {
	if w.processTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.processTimeout)
		defer cancel()
	}

	n := domain.NewNotification(w.newID(), msg)
	inserted, err := w.store.InsertNotification(ctx, n)
	if err != nil {
		return "", domain.NewRetryableError(fmt.Errorf("failed to store notification: %w", err))
	}

	if !inserted {
		w.logger.Debug("Duplicate notification skipped",
			slog.String("message_id", msg.MessageID),
		)
		return domain.ResultDuplicate, nil
	}

	w.logger.Info("Notification stored",
		slog.String("message_id", msg.MessageID),
		slog.String("type", msg.Type),
		slog.String("recipient", msg.Recipient),
	)
	return domain.ResultStored, nil
}

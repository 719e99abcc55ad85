package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/worker/domain"
	"github.com/jmoiron/sqlx"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// InsertNotification stores n unless a row with the same message id exists.
// It reports whether a row was written.
func (s *Storage) InsertNotification(ctx context.Context, n domain.Notification) (bool, error) {
	query := `
		INSERT INTO notifications (
			notification_id, message_id, recipient, sender, type,
			title, message, related_job, is_read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9)
		ON CONFLICT (message_id) DO NOTHING
	`

	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, query,
		n.ID,
		n.MessageID,
		n.Recipient,
		nullString(n.Sender),
		n.Type,
		n.Title,
		n.Message,
		nullString(n.RelatedJob),
		createdAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert notification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Info("Notification already stored",
			slog.String("message_id", n.MessageID),
		)
		return false, nil
	}

	return true, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

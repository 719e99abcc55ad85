package domain

import "errors"

var (
	// ErrMaxRetriesExceeded is returned when a redelivered message fails again
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrDeliveriesClosed is returned when the broker stops delivering, usually
	// because the connection dropped
	ErrDeliveriesClosed = errors.New("rabbitmq delivery channel closed")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}

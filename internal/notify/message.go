// Package notify carries the notifications produced by job transitions from
// the API to the notification worker over RabbitMQ.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/google/uuid"
)

// ContentType of every published message
const ContentType = "application/json"

var ErrInvalidMessage = errors.New("invalid notification message")

// Message is the wire form of one notification
type Message struct {
	MessageID string    `json:"messageId"`
	Type      string    `json:"type"`
	Recipient string    `json:"recipient"`
	Sender    string    `json:"sender,omitempty"`
	JobID     string    `json:"jobId,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMessage wraps an effect with a fresh message id
func NewMessage(e domain.Effect, now time.Time) Message {
	return Message{
		MessageID: uuid.NewString(),
		Type:      string(e.Type),
		Recipient: e.Recipient,
		Sender:    e.Sender,
		JobID:     e.JobID,
		Title:     e.Title,
		Message:   e.Message,
		CreatedAt: now.UTC(),
	}
}

// Decode parses and validates a message body
func Decode(body []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Validate checks the identifiers the notification store keys on
func (m Message) Validate() error {
	if _, err := uuid.Parse(m.MessageID); err != nil {
		return fmt.Errorf("%w: bad messageId %q", ErrInvalidMessage, m.MessageID)
	}
	if _, err := uuid.Parse(m.Recipient); err != nil {
		return fmt.Errorf("%w: bad recipient %q", ErrInvalidMessage, m.Recipient)
	}
	if m.Sender != "" {
		if _, err := uuid.Parse(m.Sender); err != nil {
			return fmt.Errorf("%w: bad sender %q", ErrInvalidMessage, m.Sender)
		}
	}
	if m.JobID != "" {
		if _, err := uuid.Parse(m.JobID); err != nil {
			return fmt.Errorf("%w: bad jobId %q", ErrInvalidMessage, m.JobID)
		}
	}
	if m.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidMessage)
	}
	return nil
}

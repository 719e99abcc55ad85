package domain

import (
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/notify"
)

// Notification is an inbox row built from one notification message
type Notification struct {
	ID         string
	MessageID  string
	Recipient  string
	Sender     string
	Type       string
	Title      string
	Message    string
	RelatedJob string
	CreatedAt  time.Time
}

// NewNotification builds the inbox row for msg. The message id is kept so a
// redelivered message does not produce a second row.
func NewNotification(id string, msg notify.Message) Notification {
	return Notification{
		ID:         id,
		MessageID:  msg.MessageID,
		Recipient:  msg.Recipient,
		Sender:     msg.Sender,
		Type:       msg.Type,
		Title:      msg.Title,
		Message:    msg.Message,
		RelatedJob: msg.JobID,
		CreatedAt:  msg.CreatedAt,
	}
}

package domain

import "time"

// Notification is an inbox entry persisted by the notification sink
type Notification struct {
	ID         string
	Recipient  string
	Sender     string
	Type       EffectType
	Title      string
	Message    string
	RelatedJob string
	IsRead     bool
	CreatedAt  time.Time
}

// NotificationFilter narrows an inbox listing. Nil fields are not applied.
type NotificationFilter struct {
	Type   string
	IsRead *bool
	Page   int
	Limit  int
}

package email

import (
	"context"
	"time"
)

// Message is one outgoing notification email.
type Message struct {
	To       []string
	Subject  string
	HTML     string
	Category string // tagged on the provider side, e.g. "account_status"
}

// Receipt is the provider's acknowledgement of a sent Message.
type Receipt struct {
	ID     string
	SentAt time.Time
}

// Sender delivers notification emails.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

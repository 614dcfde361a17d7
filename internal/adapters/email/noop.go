package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NoopSender logs messages instead of delivering them. Used when no Resend key is configured.
type NoopSender struct{}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs msg and returns a synthetic receipt.
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	slog.Info("email_skipped", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	return Receipt{ID: "noop-" + uuid.NewString(), SentAt: time.Now()}, nil
}

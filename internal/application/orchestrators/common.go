package orchestrators

import (
	"context"
	"log/slog"

	"clubhub/internal/adapters/email"
	"clubhub/internal/domain/account"
	"clubhub/internal/domain/audit"
)

// ErrForbidden is returned when the caller's role does not allow the operation.
var ErrForbidden = account.ErrForbidden

// ActionRecorder persists admin actions.
type ActionRecorder interface {
	Save(ctx context.Context, a audit.Action) error
}

// recordAction writes a to the admin action log. A failed write is logged, not returned.
func recordAction(ctx context.Context, rec ActionRecorder, a audit.Action) {
	if rec == nil {
		return
	}
	if err := rec.Save(ctx, a); err != nil {
		slog.Error("audit_write_failed", "action", a.ActionType, "actor", a.ActorID, "target", a.TargetID, "error", err)
	}
}

// notify sends msg if a sender is configured. Delivery failures are logged, not returned.
func notify(ctx context.Context, sender email.Sender, msg email.Message, buildErr error) {
	if sender == nil {
		return
	}
	if buildErr != nil {
		slog.Error("email_build_failed", "category", msg.Category, "error", buildErr)
		return
	}
	if _, err := sender.Send(ctx, msg); err != nil {
		slog.Warn("email_notify_failed", "category", msg.Category, "to", msg.To, "error", err)
	}
}

package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"clubhub/internal/adapters/email"
	"clubhub/internal/domain/account"
	"clubhub/internal/domain/audit"
)

var (
	ErrMissingUserID    = errors.New("userID is required")
	ErrSelfStatusChange = errors.New("You cannot change your own status")
)

// AccountStoreForStatus defines the store interface needed by UpdateUserStatus.
type AccountStoreForStatus interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// UpdateUserStatusInput carries input for the update-user-status orchestrator.
type UpdateUserStatusInput struct {
	ActorID   string
	ActorRole string
	UserID    string
	Status    string
}

// UpdateUserStatusResult reports the transition applied.
type UpdateUserStatusResult struct {
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

// UpdateUserStatusDeps holds dependencies for UpdateUserStatus.
type UpdateUserStatusDeps struct {
	AccountStore AccountStoreForStatus
	SessionStore SessionStoreForLogoutAll
	AuditStore   ActionRecorder
	Mailer       email.Sender
	Now          func() time.Time
}

// ExecuteUpdateUserStatus activates or deactivates a user.
// PRE: Actor may update the target per account.CanUpdateStatus
// POST: users.status is Status; a deactivated user has no active sessions
func ExecuteUpdateUserStatus(ctx context.Context, input UpdateUserStatusInput, deps UpdateUserStatusDeps) (UpdateUserStatusResult, error) {
	if input.UserID == "" {
		return UpdateUserStatusResult{}, ErrMissingUserID
	}
	if !account.IsValidStatus(input.Status) {
		return UpdateUserStatusResult{}, account.ErrInvalidStatus
	}

	target, err := deps.AccountStore.GetByID(ctx, input.UserID)
	if err != nil {
		return UpdateUserStatusResult{}, err
	}
	if target.ID == input.ActorID {
		return UpdateUserStatusResult{}, ErrSelfStatusChange
	}
	if !account.CanUpdateStatus(input.ActorRole, target.Role) {
		slog.Warn("auth_denied", "event", "update_user_status", "actor", input.ActorID, "role", input.ActorRole, "target_role", target.Role)
		return UpdateUserStatusResult{}, ErrForbidden
	}

	result := UpdateUserStatusResult{OldStatus: target.Status, NewStatus: input.Status}
	if err := deps.AccountStore.UpdateStatus(ctx, target.ID, input.Status); err != nil {
		return UpdateUserStatusResult{}, err
	}
	if input.Status == account.StatusNotActive && deps.SessionStore != nil {
		if _, err := deps.SessionStore.DeactivateAllForUser(ctx, target.ID, ""); err != nil {
			return UpdateUserStatusResult{}, fmt.Errorf("end sessions: %w", err)
		}
	}

	recordAction(ctx, deps.AuditStore, audit.NewAction(input.ActorID, audit.ActionUpdateUserStatus, deps.Now()).
		WithTarget(target.ID).
		WithDetails(fmt.Sprintf("%s -> %s", result.OldStatus, result.NewStatus)))

	if result.OldStatus != result.NewStatus {
		msg, err := email.StatusChanged(target.Email, target.FullName, result.OldStatus, result.NewStatus)
		notify(ctx, deps.Mailer, msg, err)
	}
	slog.Info("account_event", "event", "status_changed", "uid", target.ID, "old", result.OldStatus, "new", result.NewStatus, "by", input.ActorID)
	return result, nil
}

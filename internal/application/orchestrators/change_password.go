package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"clubhub/internal/domain/account"
)

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	AccountID       string
	SessionID       string
	CurrentPassword string
	NewPassword     string
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
	SessionStore SessionStoreForLogoutAll
}

var (
	ErrCurrentPasswordWrong = errors.New("Current password is incorrect")
	ErrNewPasswordSame      = errors.New("New password must be different from current password")
)

// ExecuteChangePassword verifies the current password, stores the new hash and ends other sessions.
// PRE: AccountID is the authenticated caller
// POST: Only SessionID remains active for the account
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.CurrentPassword == "" {
		return account.ErrEmptyPassword
	}
	if err := account.ValidatePassword(input.NewPassword); err != nil {
		return err
	}

	acct, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		return ErrCurrentPasswordWrong
	}
	if input.CurrentPassword == input.NewPassword {
		return ErrNewPasswordSame
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := deps.AccountStore.UpdatePassword(ctx, acct.ID, acct.PasswordHash); err != nil {
		return err
	}

	ended, err := deps.SessionStore.DeactivateAllForUser(ctx, acct.ID, input.SessionID)
	if err != nil {
		return err
	}
	slog.Info("auth_event", "event", "password_changed", "uid", acct.ID, "sessions_ended", ended)
	return nil
}

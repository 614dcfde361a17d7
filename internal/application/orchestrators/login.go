package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"clubhub/internal/domain/account"
	"clubhub/internal/domain/session"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// SessionStoreForLogin defines the store interface needed by Login.
type SessionStoreForLogin interface {
	Create(ctx context.Context, s session.Session) error
	DeactivateAllForUser(ctx context.Context, accountID, exceptID string) (int, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	Account account.Account
	Session session.Session
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	SessionStore SessionStoreForLogin
	Now          func() time.Time
	Lifetime     time.Duration
}

var (
	ErrNoSuchEmail     = errors.New("There is no user signed up with this email")
	ErrAccountInactive = errors.New("Account is not active")
)

// ExecuteLogin verifies credentials and opens a fresh session, ending any previous ones.
// PRE: Email and Password are provided
// POST: On success exactly one active session exists for the user and lastLogin is set
// INVARIANT: notActive users never receive a session
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if err := account.ValidateEmail(email); err != nil {
		return LoginResult{}, err
	}
	if err := account.ValidatePassword(input.Password); err != nil {
		return LoginResult{}, err
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if errors.Is(err, account.ErrNotFound) {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return LoginResult{}, ErrNoSuchEmail
	}
	if err != nil {
		return LoginResult{}, err
	}

	if err := acct.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "wrong_password")
		return LoginResult{}, err
	}
	if !acct.IsActive() {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "not_active")
		return LoginResult{}, ErrAccountInactive
	}

	if _, err := deps.SessionStore.DeactivateAllForUser(ctx, acct.ID, ""); err != nil {
		return LoginResult{}, err
	}

	lifetime := deps.Lifetime
	if lifetime <= 0 {
		lifetime = session.DefaultLifetime
	}
	now := deps.Now()
	sess, err := session.New(acct.ID, now, lifetime)
	if err != nil {
		return LoginResult{}, err
	}
	if err := deps.SessionStore.Create(ctx, sess); err != nil {
		return LoginResult{}, err
	}
	if err := deps.AccountStore.TouchLastLogin(ctx, acct.ID, now); err != nil {
		slog.Warn("last_login_update_failed", "uid", acct.ID, "error", err)
	}
	acct.LastLogin = &now

	slog.Info("auth_event", "event", "login_success", "uid", acct.ID, "role", acct.Role)
	return LoginResult{Account: acct, Session: sess}, nil
}

// SessionStoreForLogout defines the store interface needed by Logout.
type SessionStoreForLogout interface {
	Get(ctx context.Context, id string) (session.Session, error)
	Deactivate(ctx context.Context, id string) error
}

// LogoutInput carries input for the logout orchestrator.
type LogoutInput struct {
	SessionID string
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	SessionStore SessionStoreForLogout
}

// ExecuteLogout ends the session named by the request cookie.
// PRE: none; an empty SessionID means the caller is not logged in
// POST: The session is inactive
func ExecuteLogout(ctx context.Context, input LogoutInput, deps LogoutDeps) error {
	if input.SessionID == "" {
		return session.ErrNotLoggedIn
	}
	sess, err := deps.SessionStore.Get(ctx, input.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return session.ErrInvalidSession
	}
	if err != nil {
		return err
	}
	if !sess.IsActive {
		return session.ErrAlreadyEnded
	}
	if err := deps.SessionStore.Deactivate(ctx, sess.ID); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "logout", "uid", sess.AccountID)
	return nil
}

// SessionStoreForLogoutAll defines the store interface needed by LogoutAll.
type SessionStoreForLogoutAll interface {
	DeactivateAllForUser(ctx context.Context, accountID, exceptID string) (int, error)
}

// LogoutAllInput carries input for the logout-all orchestrator.
type LogoutAllInput struct {
	AccountID string
}

// LogoutAllDeps holds dependencies for LogoutAll.
type LogoutAllDeps struct {
	SessionStore SessionStoreForLogoutAll
}

// ExecuteLogoutAll ends every session of the caller, including the current one.
// POST: Returns the number of sessions ended
func ExecuteLogoutAll(ctx context.Context, input LogoutAllInput, deps LogoutAllDeps) (int, error) {
	if input.AccountID == "" {
		return 0, session.ErrNotLoggedIn
	}
	n, err := deps.SessionStore.DeactivateAllForUser(ctx, input.AccountID, "")
	if err != nil {
		return 0, err
	}
	slog.Info("auth_event", "event", "logout_all", "uid", input.AccountID, "sessions", n)
	return n, nil
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainAccount "clubhub/internal/domain/account"
	domainSession "clubhub/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName names the cookie carrying the session ID.
const SessionCookieName = "sessionID"

// SecureCookies marks session cookies Secure. Set in production.
var SecureCookies bool

// ErrAccountInactive is returned when a session belongs to a notActive user.
var ErrAccountInactive = errors.New("Account is not active")

// Session is the authenticated caller attached to a request.
type Session struct {
	SessionID string
	AccountID string
	Email     string
	FullName  string
	Role      string
	ExpiresAt time.Time
}

// SessionLookup reads rows of the sessions table.
type SessionLookup interface {
	Get(ctx context.Context, id string) (domainSession.Session, error)
}

// AccountLookup reads rows of the users table.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (domainAccount.Account, error)
}

// SessionResolver turns a session ID into an authenticated Session.
type SessionResolver struct {
	Sessions SessionLookup
	Accounts AccountLookup
	Now      func() time.Time
}

// Resolve loads the session row and its user.
// PRE: id is the value of the session cookie or a token's sid claim
// POST: Returns a Session only for an active, unexpired row owned by an Active user
func (sr *SessionResolver) Resolve(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, domainSession.ErrNotLoggedIn
	}
	row, err := sr.Sessions.Get(ctx, id)
	if errors.Is(err, domainSession.ErrNotFound) {
		return Session{}, domainSession.ErrInvalidSession
	}
	if err != nil {
		return Session{}, err
	}
	now := time.Now
	if sr.Now != nil {
		now = sr.Now
	}
	if err := row.Check(now()); err != nil {
		return Session{}, err
	}
	acct, err := sr.Accounts.GetByID(ctx, row.AccountID)
	if err != nil {
		return Session{}, err
	}
	if !acct.IsActive() {
		return Session{}, ErrAccountInactive
	}
	return Session{
		SessionID: row.ID,
		AccountID: acct.ID,
		Email:     acct.Email,
		FullName:  acct.FullName,
		Role:      acct.Role,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Auth returns middleware that resolves the session from the cookie or a bearer
// token and sets it in context. A rejected cookie is cleared.
// It does NOT block unauthenticated requests; use RequireAuth or RequireRole for that.
func Auth(resolver *SessionResolver, tokens *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, fromCookie := credential(r, tokens)
			if id != "" {
				sess, err := resolver.Resolve(r.Context(), id)
				if err == nil {
					r = r.WithContext(ContextWithSession(r.Context(), sess))
				} else {
					slog.Debug("auth_rejected", "path", r.URL.Path, "reason", err.Error())
					if fromCookie {
						ClearSessionCookie(w)
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// credential returns the session ID carried by r and whether it came from the cookie.
func credential(r *http.Request, tokens *TokenIssuer) (string, bool) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	if tokens == nil {
		return "", false
	}
	header := r.Header.Get("Authorization")
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	claims, err := tokens.Parse(strings.TrimSpace(raw))
	if err != nil {
		slog.Debug("auth_rejected", "path", r.URL.Path, "reason", "bad_token")
		return "", false
	}
	return claims.SessionID, false
}

// RequireAuth returns middleware that blocks unauthenticated requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no_session")
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that blocks requests from users without one of the specified roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !IsRole(r.Context(), roles...) {
				slog.Warn("auth_denied", "path", r.URL.Path, "uid", session.AccountID, "role", session.Role)
				writeJSONError(w, http.StatusForbidden, domainAccount.ErrForbidden.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SetSessionCookie sets the session cookie to expire with the session row.
func SetSessionCookie(w http.ResponseWriter, id string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// IsRole checks if the current session has one of the given roles.
func IsRole(ctx context.Context, roles ...string) bool {
	session, ok := GetSessionFromContext(ctx)
	if !ok {
		return false
	}
	for _, r := range roles {
		if session.Role == r {
			return true
		}
	}
	return false
}

// writeJSONError writes the {status, message} error envelope.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": message})
}

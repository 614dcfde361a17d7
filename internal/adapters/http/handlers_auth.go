package web

import (
	"net/http"

	"clubhub/internal/adapters/http/middleware"
	"clubhub/internal/application/orchestrators"
	"clubhub/internal/application/projections"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6"`
}

// handleLogin handles POST /api/login
// PRE: Body is {email, password}
// POST: Sets the session cookie and returns a bearer token bound to the same session
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req loginRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateRequest(req, credentialOverrides); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		SessionStore: stores.SessionStore,
		Now:          timeNow,
		Lifetime:     sessionLifetime,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	sess := result.Session
	token, err := tokens.Issue(sess.ID, result.Account.ID, result.Account.Role, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		internalError(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, sess.ID, sess.ExpiresAt)
	writeSuccess(w, http.StatusOK, "Login successful", map[string]any{
		"token": token,
		"role":  result.Account.Role,
		"uid":   result.Account.ID,
	})
}

// handleLogout handles POST /api/logout
// PRE: The session cookie (or a bearer token) names the session to end
// POST: The session is inactive and the cookie is cleared
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	sessionID := ""
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessionID = cookie.Value
	} else if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		sessionID = sess.SessionID
	}

	err := orchestrators.ExecuteLogout(r.Context(), orchestrators.LogoutInput{SessionID: sessionID},
		orchestrators.LogoutDeps{SessionStore: stores.SessionStore})
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.ClearSessionCookie(w)
	writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// handleLogoutAll handles POST /api/logout-all
// POST: Every session of the caller is inactive, including the current one
func handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	n, err := orchestrators.ExecuteLogoutAll(r.Context(), orchestrators.LogoutAllInput{AccountID: sess.AccountID},
		orchestrators.LogoutAllDeps{SessionStore: stores.SessionStore})
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.ClearSessionCookie(w)
	hub.Disconnect(sess.AccountID)
	writeSuccess(w, http.StatusOK, "Logged out of all sessions", map[string]any{"sessionsEnded": n})
}

// handleUserInfo handles GET /api/userinfo
func handleUserInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	info := projections.QueryGetUserInfo(sess.AccountID, sess.Role)
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"user_id":       info.UserID,
		"role":          info.Role,
		"role_level":    info.RoleLevel,
		"authenticated": info.Authenticated,
		"permissions":   info.Permissions,
		"fullName":      sess.FullName,
	})
}

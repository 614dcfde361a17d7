package web

import (
	"net/http"

	"clubhub/internal/adapters/http/middleware"
	"clubhub/internal/domain/account"
)

// registerRoutes mounts every endpoint on mux.
// Authenticated routes are wrapped in RequireAuth; role checks beyond that
// live in the orchestrators so the same rules apply to the CLI.
func registerRoutes(mux *http.ServeMux, loginLimiter *middleware.RateLimiter) {
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(h)
	}

	mux.HandleFunc("/healthz", handleHealthz)

	// Auth
	mux.Handle("/api/login", middleware.RateLimit(loginLimiter)(http.HandlerFunc(handleLogin)))
	mux.HandleFunc("/api/logout", handleLogout)
	mux.Handle("/api/logout-all", authed(handleLogoutAll))
	mux.Handle("/api/userinfo", authed(handleUserInfo))

	// Club operations
	mux.Handle("/api/attendance", authed(handleAttendance))
	mux.Handle("/api/schedule", authed(handleSchedule))
	mux.Handle("/api/drills", authed(handleDrills))
	mux.Handle("/api/profile", authed(handleProfile))

	// Chat
	mux.Handle("/api/chat", authed(handleChat))
	mux.Handle("/api/chat/ws", authed(handleChatSocket))

	// Admin
	adminOnly := middleware.RequireRole(account.RoleAdmin)
	mux.Handle("/api/admin/actions", adminOnly(http.HandlerFunc(handleAdminActions)))
	mux.Handle("/api/admin/perf", adminOnly(http.HandlerFunc(handleAdminPerf)))
}

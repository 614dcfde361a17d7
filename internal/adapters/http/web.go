package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"clubhub/internal/adapters/email"
	"clubhub/internal/adapters/http/middleware"
	"clubhub/internal/adapters/http/perf"
	"clubhub/internal/adapters/storage"
	accountStore "clubhub/internal/adapters/storage/account"
	attendanceStore "clubhub/internal/adapters/storage/attendance"
	auditStore "clubhub/internal/adapters/storage/audit"
	chatStore "clubhub/internal/adapters/storage/chat"
	drillStore "clubhub/internal/adapters/storage/drill"
	profileStore "clubhub/internal/adapters/storage/profile"
	scheduleStore "clubhub/internal/adapters/storage/schedule"
	sessionStore "clubhub/internal/adapters/storage/session"
	teamStore "clubhub/internal/adapters/storage/team"
	"clubhub/internal/domain/session"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	SessionStore    sessionStore.Store
	ProfileStore    profileStore.Store
	TeamStore       teamStore.Store
	ScheduleStore   scheduleStore.Store
	AttendanceStore attendanceStore.Store
	MessageStore    chatStore.MessageStore
	GroupStore      chatStore.GroupStore
	DrillStore      drillStore.Store
	AuditStore      auditStore.Store
}

// NewSQLiteStores builds every store on db.
func NewSQLiteStores(db storage.SQLDB) *Stores {
	chats := chatStore.NewSQLiteStore(db)
	return &Stores{
		AccountStore:    accountStore.NewSQLiteStore(db),
		SessionStore:    sessionStore.NewSQLiteStore(db),
		ProfileStore:    profileStore.NewSQLiteStore(db),
		TeamStore:       teamStore.NewSQLiteStore(db),
		ScheduleStore:   scheduleStore.NewSQLiteStore(db),
		AttendanceStore: attendanceStore.NewSQLiteStore(db),
		MessageStore:    chats,
		GroupStore:      chats,
		DrillStore:      drillStore.NewSQLiteStore(db),
		AuditStore:      auditStore.NewSQLiteStore(db),
	}
}

// Options configures NewMux.
type Options struct {
	CSRFKey         []byte
	JWTSecret       []byte
	SessionLifetime time.Duration
	SecureCookies   bool
	TrustedOrigins  []string
	Mailer          email.Sender
	SlowRequestMs   int // <= 0 selects middleware.DefaultSlowRequestMs
}

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// Global stores instance (set by NewMux)
var stores *Stores

// Session and token state (set by NewMux)
var (
	resolver        *middleware.SessionResolver
	tokens          *middleware.TokenIssuer
	sessionLifetime = session.DefaultLifetime
)

// Global chat hub (set by NewMux)
var hub *Hub

// Global email sender (set by NewMux)
var mailer email.Sender

// Rate limiters started by NewMux; stopped by Close
var limiters []*middleware.RateLimiter

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// LoginAttemptsPerMinute bounds login attempts per IP.
var LoginAttemptsPerMinute = 10

// NewMux wires HTTP handlers for the app.
// PRE: s holds every store; opts.CSRFKey is 32 bytes; opts.JWTSecret is non-empty
// POST: Returns the API wrapped in the middleware chain
func NewMux(s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	mailer = opts.Mailer
	if mailer == nil {
		mailer = email.NewNoopSender()
	}
	if opts.SessionLifetime > 0 {
		sessionLifetime = opts.SessionLifetime
	}
	middleware.SecureCookies = opts.SecureCookies
	resolver = &middleware.SessionResolver{
		Sessions: s.SessionStore,
		Accounts: s.AccountStore,
		Now:      func() time.Time { return timeNow() },
	}
	tokens = middleware.NewTokenIssuer(opts.JWTSecret)
	trustedOrigins = opts.TrustedOrigins
	hub = NewHub()

	mux := http.NewServeMux()
	loginLimiter := middleware.NewRateLimiter(LoginAttemptsPerMinute, time.Minute)
	registerRoutes(mux, loginLimiter)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)
	limiters = []*middleware.RateLimiter{loginLimiter, limiter}

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.Auth(resolver, tokens),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequestMs),
	)
}

// Close disconnects every websocket client and stops the rate limiters.
// Called on shutdown.
func Close() {
	if hub != nil {
		hub.Close()
	}
	for _, l := range limiters {
		l.Stop()
	}
	limiters = nil
}

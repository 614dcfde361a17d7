package orchestrators

import (
	"context"
	"log/slog"
	"time"
)

// SessionStoreForPurge defines the store interface needed by PurgeSessions.
type SessionStoreForPurge interface {
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// PurgeSessionsDeps holds dependencies for PurgeSessions.
type PurgeSessionsDeps struct {
	SessionStore SessionStoreForPurge
	Now          func() time.Time
}

// ExecutePurgeSessions deletes expired and logged-out sessions.
// POST: Returns the number of rows removed
func ExecutePurgeSessions(ctx context.Context, deps PurgeSessionsDeps) (int, error) {
	n, err := deps.SessionStore.PurgeExpired(ctx, deps.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("session_purge", "removed", n)
	}
	return n, nil
}

// RunSessionPurger purges sessions immediately and then every interval until ctx is done.
func RunSessionPurger(ctx context.Context, interval time.Duration, deps PurgeSessionsDeps) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := ExecutePurgeSessions(ctx, deps); err != nil {
			slog.Error("session_purge_failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

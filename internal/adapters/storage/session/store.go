package session

import (
	"context"
	"time"

	domain "clubhub/internal/domain/session"
)

// Store persists login sessions.
type Store interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	Deactivate(ctx context.Context, id string) error
	DeactivateAllForUser(ctx context.Context, accountID, exceptID string) (int, error)
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
	ListForUser(ctx context.Context, accountID string) ([]domain.Session, error)
}

var _ Store = (*SQLiteStore)(nil)

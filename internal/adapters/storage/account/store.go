package account

import (
	"context"
	"time"

	domain "clubhub/internal/domain/account"
)

// Store persists rows of the users table.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Create(ctx context.Context, a domain.Account) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	ListByRoles(ctx context.Context, roles []string) ([]domain.Account, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Account, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

var _ Store = (*SQLiteStore)(nil)

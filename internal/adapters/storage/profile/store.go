package profile

import (
	"context"

	domain "clubhub/internal/domain/profile"
)

// Store reads and writes a user together with its role detail row.
type Store interface {
	Get(ctx context.Context, uid string) (domain.Profile, error)
	Update(ctx context.Context, uid, role string, user, details map[string]any) error
}

var _ Store = (*SQLiteStore)(nil)

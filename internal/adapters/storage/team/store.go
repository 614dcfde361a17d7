package team

import (
	"context"

	domain "clubhub/internal/domain/team"
)

// Store persists teams.
type Store interface {
	Get(ctx context.Context, id string) (domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	Save(ctx context.Context, t domain.Team) error
	Exists(ctx context.Context, id string) (bool, error)
}

var _ Store = (*SQLiteStore)(nil)

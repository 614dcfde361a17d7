package drill

import (
	"context"

	domain "clubhub/internal/domain/drill"
)

// Store persists drills.
type Store interface {
	List(ctx context.Context) ([]domain.Drill, error)
	Get(ctx context.Context, id string) (domain.Drill, error)
	Create(ctx context.Context, d domain.Drill) error
	Update(ctx context.Context, d domain.Drill) error
	Delete(ctx context.Context, id string) error
}

var _ Store = (*SQLiteStore)(nil)

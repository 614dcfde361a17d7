package audit

import (
	"context"

	domain "clubhub/internal/domain/audit"
)

// Filter narrows an action listing. Empty fields are ignored.
type Filter struct {
	ActorID  string
	TargetID string
}

// Store persists admin actions.
type Store interface {
	Save(ctx context.Context, a domain.Action) error
	List(ctx context.Context, filter Filter, limit int) ([]domain.Action, error)
}

var _ Store = (*SQLiteStore)(nil)

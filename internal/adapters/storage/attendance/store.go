package attendance

import (
	"context"
	"time"

	domain "clubhub/internal/domain/attendance"
)

// Filter narrows attendance queries. Empty fields are ignored.
type Filter struct {
	PlayerID string
	DateFrom string
	DateTo   string
}

// Store persists attendance records.
type Store interface {
	Create(ctx context.Context, a domain.Attendance) error
	Get(ctx context.Context, id string) (domain.Attendance, error)
	ListByPlayer(ctx context.Context, filter Filter) ([]domain.Row, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]domain.Row, error)
	Stats(ctx context.Context, filter Filter) (domain.Stats, error)
	Update(ctx context.Context, id string, patch domain.Patch, at time.Time) error
	Approve(ctx context.Context, id, approverID string, at time.Time) error
}

var _ Store = (*SQLiteStore)(nil)

package schedule

import (
	"context"
	"time"

	domain "clubhub/internal/domain/schedule"
)

// Filter narrows a schedule listing. Empty fields are ignored.
type Filter struct {
	EventType   string
	TeamID      string
	EventStatus string
	DateFrom    string
	DateTo      string
}

// Store persists schedules.
type Store interface {
	Get(ctx context.Context, id string) (domain.Listing, error)
	List(ctx context.Context, filter Filter) ([]domain.Listing, error)
	Create(ctx context.Context, s domain.Schedule) error
	Update(ctx context.Context, s domain.Schedule) error
	Delete(ctx context.Context, id string) error
	Approve(ctx context.Context, id, approverID string, at time.Time) error
	HasAttendance(ctx context.Context, id string) (bool, error)
}

var _ Store = (*SQLiteStore)(nil)

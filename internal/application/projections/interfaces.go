package projections

import (
	"context"

	attendanceStore "clubhub/internal/adapters/storage/attendance"
	auditStore "clubhub/internal/adapters/storage/audit"
	"clubhub/internal/domain/attendance"
	"clubhub/internal/domain/audit"
	"clubhub/internal/domain/drill"
	"clubhub/internal/domain/session"
)

// AttendanceStore interface for attendance report queries.
type AttendanceStore interface {
	ListByPlayer(ctx context.Context, filter attendanceStore.Filter) ([]attendance.Row, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]attendance.Row, error)
	Stats(ctx context.Context, filter attendanceStore.Filter) (attendance.Stats, error)
}

// DrillStore interface for drill queries.
type DrillStore interface {
	List(ctx context.Context) ([]drill.Drill, error)
	Get(ctx context.Context, id string) (drill.Drill, error)
}

// ActionStore interface for admin action queries.
type ActionStore interface {
	List(ctx context.Context, filter auditStore.Filter, limit int) ([]audit.Action, error)
}

// SessionStore interface for session history queries.
type SessionStore interface {
	ListForUser(ctx context.Context, accountID string) ([]session.Session, error)
}

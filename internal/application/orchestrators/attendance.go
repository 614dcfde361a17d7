package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"clubhub/internal/domain/account"
	"clubhub/internal/domain/attendance"
	"clubhub/internal/domain/audit"
	"clubhub/internal/domain/schedule"
)

// ErrMissingAttendanceID is returned when an update names no record.
var ErrMissingAttendanceID = errors.New("attendanceID is required")

// AttendanceStoreForRecord defines the store interface needed by RecordAttendance.
type AttendanceStoreForRecord interface {
	Create(ctx context.Context, a attendance.Attendance) error
}

// AccountLookup fetches a user by uid.
type AccountLookup interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// ScheduleLookup fetches a schedule by ID.
type ScheduleLookup interface {
	Get(ctx context.Context, id string) (schedule.Listing, error)
}

// RecordAttendanceInput carries input for the record-attendance orchestrator.
type RecordAttendanceInput struct {
	ActorID        string
	ActorRole      string
	PlayerID       string
	ScheduleID     string
	Status         string
	AttendanceDate string
	Notes          string
}

// RecordAttendanceDeps holds dependencies for RecordAttendance.
type RecordAttendanceDeps struct {
	AttendanceStore AttendanceStoreForRecord
	AccountStore    AccountLookup
	ScheduleStore   ScheduleLookup
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteRecordAttendance records one player's attendance at one schedule.
// PRE: ActorRole is a staff role
// POST: A new attendance row exists for (PlayerID, ScheduleID)
// INVARIANT: At most one record per player and schedule
func ExecuteRecordAttendance(ctx context.Context, input RecordAttendanceInput, deps RecordAttendanceDeps) (attendance.Attendance, error) {
	if !account.IsStaff(input.ActorRole) {
		return attendance.Attendance{}, ErrForbidden
	}
	now := deps.Now()
	date := strings.TrimSpace(input.AttendanceDate)
	if date == "" {
		date = now.Format(attendance.DateLayout)
	}
	a := attendance.Attendance{
		ID:             deps.GenerateID(),
		PlayerID:       strings.TrimSpace(input.PlayerID),
		ScheduleID:     strings.TrimSpace(input.ScheduleID),
		Status:         input.Status,
		AttendanceDate: date,
		Notes:          strings.TrimSpace(input.Notes),
		RecordedBy:     input.ActorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := a.Validate(); err != nil {
		return attendance.Attendance{}, err
	}

	player, err := deps.AccountStore.GetByID(ctx, a.PlayerID)
	if errors.Is(err, account.ErrNotFound) {
		return attendance.Attendance{}, attendance.ErrPlayerInactive
	}
	if err != nil {
		return attendance.Attendance{}, err
	}
	if player.Role != account.RolePlayer || !player.IsActive() {
		return attendance.Attendance{}, attendance.ErrPlayerInactive
	}
	if _, err := deps.ScheduleStore.Get(ctx, a.ScheduleID); err != nil {
		return attendance.Attendance{}, err
	}

	if err := deps.AttendanceStore.Create(ctx, a); err != nil {
		return attendance.Attendance{}, err
	}
	slog.Info("attendance_event", "event", "recorded", "attendance_id", a.ID, "player", a.PlayerID, "schedule", a.ScheduleID, "by", a.RecordedBy)
	return a, nil
}

// AttendanceStoreForUpdate defines the store interface needed by UpdateAttendance.
type AttendanceStoreForUpdate interface {
	Get(ctx context.Context, id string) (attendance.Attendance, error)
	Update(ctx context.Context, id string, patch attendance.Patch, at time.Time) error
}

// UpdateAttendanceInput carries input for the update-attendance orchestrator.
type UpdateAttendanceInput struct {
	ActorID      string
	ActorRole    string
	AttendanceID string
	Patch        attendance.Patch
}

// UpdateAttendanceDeps holds dependencies for UpdateAttendance.
type UpdateAttendanceDeps struct {
	AttendanceStore AttendanceStoreForUpdate
	Now             func() time.Time
}

// ExecuteUpdateAttendance changes status, notes or date of a record.
// PRE: ActorRole is a staff role
// POST: Only the patched fields and updatedAt change
func ExecuteUpdateAttendance(ctx context.Context, input UpdateAttendanceInput, deps UpdateAttendanceDeps) (attendance.Attendance, error) {
	if !account.IsStaff(input.ActorRole) {
		return attendance.Attendance{}, ErrForbidden
	}
	if input.AttendanceID == "" {
		return attendance.Attendance{}, ErrMissingAttendanceID
	}
	if _, err := deps.AttendanceStore.Get(ctx, input.AttendanceID); err != nil {
		return attendance.Attendance{}, err
	}
	if err := input.Patch.Validate(); err != nil {
		return attendance.Attendance{}, err
	}
	if err := deps.AttendanceStore.Update(ctx, input.AttendanceID, input.Patch, deps.Now()); err != nil {
		return attendance.Attendance{}, err
	}
	slog.Info("attendance_event", "event", "updated", "attendance_id", input.AttendanceID, "by", input.ActorID)
	return deps.AttendanceStore.Get(ctx, input.AttendanceID)
}

// AttendanceStoreForApprove defines the store interface needed by ApproveAttendance.
type AttendanceStoreForApprove interface {
	Approve(ctx context.Context, id, approverID string, at time.Time) error
}

// ApproveAttendanceInput carries input for the approve-attendance orchestrator.
type ApproveAttendanceInput struct {
	ActorID      string
	ActorRole    string
	AttendanceID string
}

// ApproveAttendanceDeps holds dependencies for ApproveAttendance.
type ApproveAttendanceDeps struct {
	AttendanceStore AttendanceStoreForApprove
	AuditStore      ActionRecorder
	Now             func() time.Time
}

// ExecuteApproveAttendance marks a record as approved by a manager.
// PRE: ActorRole is manager
// POST: approvedBy and approvedAt are set once
func ExecuteApproveAttendance(ctx context.Context, input ApproveAttendanceInput, deps ApproveAttendanceDeps) error {
	if input.ActorRole != account.RoleManager {
		return ErrForbidden
	}
	if input.AttendanceID == "" {
		return ErrMissingAttendanceID
	}
	now := deps.Now()
	if err := deps.AttendanceStore.Approve(ctx, input.AttendanceID, input.ActorID, now); err != nil {
		return err
	}
	recordAction(ctx, deps.AuditStore, audit.NewAction(input.ActorID, audit.ActionApproveAttendance, now).WithTarget(input.AttendanceID))
	return nil
}

package projections

import (
	"context"
	"errors"
	"strings"

	attendanceStore "clubhub/internal/adapters/storage/attendance"
	"clubhub/internal/domain/account"
	"clubhub/internal/domain/attendance"
)

// ErrMissingScheduleID is returned when a schedule report names no schedule.
var ErrMissingScheduleID = errors.New("scheduleID is required")

// AttendanceQuery carries the caller and filters for attendance reports.
type AttendanceQuery struct {
	ActorID   string
	ActorRole string
	PlayerID  string
	DateFrom  string
	DateTo    string
}

// GetAttendanceDeps holds dependencies for the attendance projections.
type GetAttendanceDeps struct {
	AttendanceStore AttendanceStore
}

// scopedFilter applies the visibility rule: players only see their own records.
// PRE: ActorRole is a known role
// POST: Returns a filter whose PlayerID is the caller for players
func scopedFilter(q AttendanceQuery) (attendanceStore.Filter, error) {
	f := attendanceStore.Filter{
		PlayerID: strings.TrimSpace(q.PlayerID),
		DateFrom: strings.TrimSpace(q.DateFrom),
		DateTo:   strings.TrimSpace(q.DateTo),
	}
	if f.DateFrom != "" && !attendance.IsValidDate(f.DateFrom) {
		return attendanceStore.Filter{}, attendance.ErrInvalidDate
	}
	if f.DateTo != "" && !attendance.IsValidDate(f.DateTo) {
		return attendanceStore.Filter{}, attendance.ErrInvalidDate
	}
	if q.ActorRole == account.RolePlayer {
		if f.PlayerID != "" && f.PlayerID != q.ActorID {
			return attendanceStore.Filter{}, account.ErrForbidden
		}
		f.PlayerID = q.ActorID
		return f, nil
	}
	if !account.IsStaff(q.ActorRole) {
		return attendanceStore.Filter{}, account.ErrForbidden
	}
	return f, nil
}

// QueryGetPlayerAttendance lists attendance rows newest first.
// PRE: ActorRole is set
// POST: Players receive only their own rows
func QueryGetPlayerAttendance(ctx context.Context, q AttendanceQuery, deps GetAttendanceDeps) ([]attendance.Row, error) {
	f, err := scopedFilter(q)
	if err != nil {
		return nil, err
	}
	rows, err := deps.AttendanceStore.ListByPlayer(ctx, f)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []attendance.Row{}
	}
	return rows, nil
}

// QueryGetAttendanceStats totals attendance by status.
// POST: AttendanceRate is present/total*100 rounded to two places, 0 when empty
func QueryGetAttendanceStats(ctx context.Context, q AttendanceQuery, deps GetAttendanceDeps) (attendance.Stats, error) {
	f, err := scopedFilter(q)
	if err != nil {
		return attendance.Stats{}, err
	}
	stats, err := deps.AttendanceStore.Stats(ctx, f)
	if err != nil {
		return attendance.Stats{}, err
	}
	stats.ComputeRate()
	return stats, nil
}

// ScheduleAttendanceQuery names the schedule whose roll call is requested.
type ScheduleAttendanceQuery struct {
	ActorRole  string
	ScheduleID string
}

// QueryGetScheduleAttendance lists every record for one schedule ordered by player name.
// PRE: ActorRole is a staff role
func QueryGetScheduleAttendance(ctx context.Context, q ScheduleAttendanceQuery, deps GetAttendanceDeps) ([]attendance.Row, error) {
	if !account.IsStaff(q.ActorRole) {
		return nil, account.ErrForbidden
	}
	id := strings.TrimSpace(q.ScheduleID)
	if id == "" {
		return nil, ErrMissingScheduleID
	}
	rows, err := deps.AttendanceStore.ListBySchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []attendance.Row{}
	}
	return rows, nil
}

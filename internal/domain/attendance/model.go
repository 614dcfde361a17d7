package attendance

import (
	"errors"
	"math"
	"time"
)

// Status values for an attendance record.
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLate    = "Late"
)

// DateLayout is the layout of AttendanceDate.
const DateLayout = "2006-01-02"

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusPresent, StatusAbsent, StatusLate}

// Domain errors
var (
	ErrEmptyPlayerID   = errors.New("playerID is required")
	ErrEmptyScheduleID = errors.New("scheduleID is required")
	ErrInvalidStatus   = errors.New("Invalid status. Must be Present, Absent, or Late")
	ErrInvalidDate     = errors.New("Invalid date format. Use YYYY-MM-DD")
	ErrNotFound        = errors.New("Attendance record not found")
	ErrDuplicate       = errors.New("Attendance already recorded for this player and schedule")
	ErrPlayerInactive  = errors.New("Player not found or inactive")
	ErrNoFields        = errors.New("No valid fields to update")
	ErrAlreadyApproved = errors.New("Attendance is already approved")
)

// Attendance is one player's attendance at one scheduled event.
type Attendance struct {
	ID             string     `json:"attendanceID"`
	PlayerID       string     `json:"playerID"`
	ScheduleID     string     `json:"scheduleID"`
	Status         string     `json:"status"`
	AttendanceDate string     `json:"attendanceDate"`
	Notes          string     `json:"notes"`
	RecordedBy     string     `json:"recordedBy"`
	ApprovedBy     string     `json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Row is an Attendance joined with the names a report needs.
type Row struct {
	Attendance
	PlayerName    string `json:"playerName"`
	RecorderName  string `json:"recorderName"`
	ScheduleTitle string `json:"scheduleTitle"`
	EventDate     string `json:"eventDate"`
	EventType     string `json:"eventType"`
}

// Validate checks if the Attendance has valid data.
// PRE: Attendance struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: PlayerID and ScheduleID must not be empty
func (a *Attendance) Validate() error {
	if a.PlayerID == "" {
		return ErrEmptyPlayerID
	}
	if a.ScheduleID == "" {
		return ErrEmptyScheduleID
	}
	if !IsValidStatus(a.Status) {
		return ErrInvalidStatus
	}
	if !IsValidDate(a.AttendanceDate) {
		return ErrInvalidDate
	}
	return nil
}

// IsValidStatus reports whether s is an attendance status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsValidDate reports whether d is a YYYY-MM-DD date.
func IsValidDate(d string) bool {
	_, err := time.Parse(DateLayout, d)
	return err == nil
}

// Stats summarises a set of attendance records.
type Stats struct {
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	AttendanceRate float64 `json:"attendanceRate"`
}

// ComputeRate sets AttendanceRate to present/total as a percentage rounded to 2 places.
// POST: AttendanceRate is 0 when Total is 0
func (s *Stats) ComputeRate() {
	if s.Total == 0 {
		s.AttendanceRate = 0
		return
	}
	rate := float64(s.Present) / float64(s.Total) * 100
	s.AttendanceRate = math.Round(rate*100) / 100
}

// Patch carries the updatable fields of an attendance record.
// A nil field is left unchanged.
type Patch struct {
	Status         *string
	Notes          *string
	AttendanceDate *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.Notes == nil && p.AttendanceDate == nil
}

// Validate checks each present field.
func (p Patch) Validate() error {
	if p.IsEmpty() {
		return ErrNoFields
	}
	if p.Status != nil && !IsValidStatus(*p.Status) {
		return ErrInvalidStatus
	}
	if p.AttendanceDate != nil && !IsValidDate(*p.AttendanceDate) {
		return ErrInvalidDate
	}
	return nil
}

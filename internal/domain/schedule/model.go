package schedule

import (
	"errors"
	"strings"
	"time"
)

// Event types
const (
	EventTraining = "Training"
	EventMedical  = "Medical"
	EventMatch    = "Match"
	EventMeeting  = "Meeting"
)

// Day of week constants
const (
	Monday    = "Monday"
	Tuesday   = "Tuesday"
	Wednesday = "Wednesday"
	Thursday  = "Thursday"
	Friday    = "Friday"
	Saturday  = "Saturday"
	Sunday    = "Sunday"
)

// Priorities
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Recurrence patterns
const (
	RecurrenceNone    = "None"
	RecurrenceDaily   = "Daily"
	RecurrenceWeekly  = "Weekly"
	RecurrenceMonthly = "Monthly"
)

// Event statuses
const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// DateLayout is the storage and wire layout for eventDate.
const DateLayout = "2006-01-02"

// TimeLayout is the normalised storage layout for start and end times.
const TimeLayout = "15:04:05"

var (
	ValidEventTypes  = []string{EventTraining, EventMedical, EventMatch, EventMeeting}
	ValidDays        = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
	ValidPriorities  = []string{PriorityLow, PriorityMedium, PriorityHigh}
	ValidRecurrences = []string{RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly}
	ValidStatuses    = []string{StatusScheduled, StatusCompleted, StatusCancelled}
)

// Domain errors
var (
	ErrEmptyTitle        = errors.New("Title is required")
	ErrInvalidEventType  = errors.New("Invalid eventType. Must be one of: Training, Medical, Match, Meeting")
	ErrInvalidDay        = errors.New("Invalid dayOfWeek. Must be Monday through Sunday")
	ErrInvalidPriority   = errors.New("Invalid priority. Must be one of: Low, Medium, High")
	ErrInvalidRecurrence = errors.New("Invalid recurrence. Must be one of: None, Daily, Weekly, Monthly")
	ErrInvalidStatus     = errors.New("Invalid eventStatus. Must be one of: Scheduled, Completed, Cancelled")
	ErrInvalidDate       = errors.New("Invalid date format. Use YYYY-MM-DD")
	ErrInvalidTime       = errors.New("Invalid time format. Use HH:MM or HH:MM:SS")
	ErrEndBeforeStart    = errors.New("endTime must be after startTime")
	ErrSameTeams         = errors.New("teamID and opponentTeamID must differ")
	ErrNotFound          = errors.New("Schedule not found")
	ErrAlreadyApproved   = errors.New("Schedule is already approved")
	ErrHasAttendance     = errors.New("Cannot delete schedule with recorded attendance")
	ErrNoFields          = errors.New("No valid fields to update")
)

// Schedule is a single club event: training, match, medical check or meeting.
type Schedule struct {
	ID             string     `json:"scheduleID"`
	EventType      string     `json:"eventType"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	EventDate      string     `json:"eventDate"`
	StartTime      string     `json:"startTime"`
	EndTime        string     `json:"endTime"`
	DayOfWeek      string     `json:"dayOfWeek"`
	Location       string     `json:"location"`
	TeamID         string     `json:"teamID,omitempty"`
	OpponentTeamID string     `json:"opponentTeamID,omitempty"`
	Priority       string     `json:"priority"`
	Recurrence     string     `json:"recurrence"`
	EventStatus    string     `json:"eventStatus"`
	Notes          string     `json:"notes"`
	CreatedBy      string     `json:"createdBy"`
	ApprovedBy     string     `json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Listing is a Schedule joined with display names for the people and teams it references.
type Listing struct {
	Schedule
	CreatorName      string `json:"creatorName"`
	ApproverName     string `json:"approverName,omitempty"`
	TeamName         string `json:"teamName,omitempty"`
	OpponentTeamName string `json:"opponentTeamName,omitempty"`
}

// ApplyDefaults fills optional enum fields left empty.
// POST: Priority, Recurrence and EventStatus are non-empty
func (s *Schedule) ApplyDefaults() {
	if s.Priority == "" {
		s.Priority = PriorityMedium
	}
	if s.Recurrence == "" {
		s.Recurrence = RecurrenceNone
	}
	if s.EventStatus == "" {
		s.EventStatus = StatusScheduled
	}
}

// Validate checks if the Schedule has valid data and normalises its times.
// PRE: ApplyDefaults has been called
// POST: Returns nil if valid; StartTime and EndTime are HH:MM:SS
func (s *Schedule) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if !oneOf(s.EventType, ValidEventTypes) {
		return ErrInvalidEventType
	}
	if !oneOf(s.DayOfWeek, ValidDays) {
		return ErrInvalidDay
	}
	if !oneOf(s.Priority, ValidPriorities) {
		return ErrInvalidPriority
	}
	if !oneOf(s.Recurrence, ValidRecurrences) {
		return ErrInvalidRecurrence
	}
	if !oneOf(s.EventStatus, ValidStatuses) {
		return ErrInvalidStatus
	}
	if !IsValidDate(s.EventDate) {
		return ErrInvalidDate
	}
	start, err := NormalizeTime(s.StartTime)
	if err != nil {
		return err
	}
	end, err := NormalizeTime(s.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return ErrEndBeforeStart
	}
	if s.TeamID != "" && s.TeamID == s.OpponentTeamID {
		return ErrSameTeams
	}
	s.StartTime, s.EndTime = start, end
	return nil
}

// IsApproved reports whether an admin has approved the schedule.
// INVARIANT: Schedule fields are not mutated
func (s *Schedule) IsApproved() bool {
	return s.ApprovedBy != ""
}

// Approve records approverID as the approver at now.
// PRE: !IsApproved()
// POST: ApprovedBy and ApprovedAt are set
func (s *Schedule) Approve(approverID string, now time.Time) error {
	if s.IsApproved() {
		return ErrAlreadyApproved
	}
	s.ApprovedBy = approverID
	s.ApprovedAt = &now
	s.UpdatedAt = now
	return nil
}

// IsValidDate reports whether d is a calendar date in YYYY-MM-DD form.
func IsValidDate(d string) bool {
	_, err := time.Parse(DateLayout, d)
	return err == nil
}

// NormalizeTime accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func NormalizeTime(v string) (string, error) {
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", ErrInvalidTime
}

// IsValidEventType reports whether v is an eventType value.
func IsValidEventType(v string) bool { return oneOf(v, ValidEventTypes) }

// IsValidStatus reports whether v is an eventStatus value.
func IsValidStatus(v string) bool { return oneOf(v, ValidStatuses) }

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

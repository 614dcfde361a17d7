package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"clubhub/internal/adapters/email"
	"clubhub/internal/domain/account"
	"clubhub/internal/domain/audit"
	"clubhub/internal/domain/schedule"
	"clubhub/internal/domain/team"
)

// ErrMissingScheduleID is returned when an operation names no schedule.
var ErrMissingScheduleID = errors.New("scheduleID is required")

// TeamLookup checks that a team exists.
type TeamLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

func checkTeams(ctx context.Context, teams TeamLookup, ids ...string) error {
	for _, id := range ids {
		if id == "" {
			continue
		}
		ok, err := teams.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return team.ErrNotFound
		}
	}
	return nil
}

// ScheduleStoreForCreate defines the store interface needed by CreateSchedule.
type ScheduleStoreForCreate interface {
	Create(ctx context.Context, s schedule.Schedule) error
}

// CreateScheduleInput carries input for the create-schedule orchestrator.
type CreateScheduleInput struct {
	ActorID   string
	ActorRole string
	Schedule  schedule.Schedule
}

// CreateScheduleDeps holds dependencies for CreateSchedule.
type CreateScheduleDeps struct {
	ScheduleStore ScheduleStoreForCreate
	TeamStore     TeamLookup
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteCreateSchedule validates and stores a new event.
// PRE: ActorRole may manage schedules
// POST: Schedule persisted unapproved with normalised times
func ExecuteCreateSchedule(ctx context.Context, input CreateScheduleInput, deps CreateScheduleDeps) (schedule.Schedule, error) {
	if !account.CanManageSchedules(input.ActorRole) {
		return schedule.Schedule{}, ErrForbidden
	}
	s := input.Schedule
	s.Title = strings.TrimSpace(s.Title)
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return schedule.Schedule{}, err
	}
	if err := checkTeams(ctx, deps.TeamStore, s.TeamID, s.OpponentTeamID); err != nil {
		return schedule.Schedule{}, err
	}

	now := deps.Now()
	s.ID = deps.GenerateID()
	s.CreatedBy = input.ActorID
	s.ApprovedBy, s.ApprovedAt = "", nil
	s.CreatedAt, s.UpdatedAt = now, now
	if err := deps.ScheduleStore.Create(ctx, s); err != nil {
		return schedule.Schedule{}, err
	}
	slog.Info("schedule_event", "event", "created", "schedule_id", s.ID, "type", s.EventType, "by", input.ActorID)
	return s, nil
}

// ScheduleStoreForUpdate defines the store interface needed by UpdateSchedule.
type ScheduleStoreForUpdate interface {
	Get(ctx context.Context, id string) (schedule.Listing, error)
	Update(ctx context.Context, s schedule.Schedule) error
}

// UpdateScheduleInput carries input for the update-schedule orchestrator.
type UpdateScheduleInput struct {
	ActorID    string
	ActorRole  string
	ScheduleID string
	Patch      schedule.Patch
}

// UpdateScheduleDeps holds dependencies for UpdateSchedule.
type UpdateScheduleDeps struct {
	ScheduleStore ScheduleStoreForUpdate
	TeamStore     TeamLookup
	Now           func() time.Time
}

// ExecuteUpdateSchedule applies a partial update and re-validates the whole event.
// PRE: ActorRole may manage schedules
// POST: updatedAt is set; approval fields are untouched
func ExecuteUpdateSchedule(ctx context.Context, input UpdateScheduleInput, deps UpdateScheduleDeps) (schedule.Schedule, error) {
	if !account.CanManageSchedules(input.ActorRole) {
		return schedule.Schedule{}, ErrForbidden
	}
	if input.ScheduleID == "" {
		return schedule.Schedule{}, ErrMissingScheduleID
	}
	current, err := deps.ScheduleStore.Get(ctx, input.ScheduleID)
	if err != nil {
		return schedule.Schedule{}, err
	}
	if input.Patch.IsEmpty() {
		return schedule.Schedule{}, schedule.ErrNoFields
	}

	s := current.Schedule
	input.Patch.Apply(&s)
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return schedule.Schedule{}, err
	}
	if err := checkTeams(ctx, deps.TeamStore, s.TeamID, s.OpponentTeamID); err != nil {
		return schedule.Schedule{}, err
	}
	s.UpdatedAt = deps.Now()
	if err := deps.ScheduleStore.Update(ctx, s); err != nil {
		return schedule.Schedule{}, err
	}
	slog.Info("schedule_event", "event", "updated", "schedule_id", s.ID, "by", input.ActorID)
	return s, nil
}

// ScheduleStoreForDelete defines the store interface needed by DeleteSchedule.
type ScheduleStoreForDelete interface {
	Get(ctx context.Context, id string) (schedule.Listing, error)
	HasAttendance(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// DeleteScheduleInput carries input for the delete-schedule orchestrator.
type DeleteScheduleInput struct {
	ActorID    string
	ActorRole  string
	ScheduleID string
}

// DeleteScheduleDeps holds dependencies for DeleteSchedule.
type DeleteScheduleDeps struct {
	ScheduleStore ScheduleStoreForDelete
	AuditStore    ActionRecorder
	Now           func() time.Time
}

// ExecuteDeleteSchedule removes an event that has no attendance recorded.
// PRE: ActorRole may manage schedules
// POST: Schedule row is gone and an admin action is logged
func ExecuteDeleteSchedule(ctx context.Context, input DeleteScheduleInput, deps DeleteScheduleDeps) error {
	if !account.CanManageSchedules(input.ActorRole) {
		return ErrForbidden
	}
	if input.ScheduleID == "" {
		return ErrMissingScheduleID
	}
	s, err := deps.ScheduleStore.Get(ctx, input.ScheduleID)
	if err != nil {
		return err
	}
	has, err := deps.ScheduleStore.HasAttendance(ctx, s.ID)
	if err != nil {
		return err
	}
	if has {
		return schedule.ErrHasAttendance
	}
	if err := deps.ScheduleStore.Delete(ctx, s.ID); err != nil {
		return err
	}
	recordAction(ctx, deps.AuditStore, audit.NewAction(input.ActorID, audit.ActionDeleteSchedule, deps.Now()).
		WithTarget(s.ID).WithDetails(s.Title+" on "+s.EventDate))
	slog.Info("schedule_event", "event", "deleted", "schedule_id", s.ID, "by", input.ActorID)
	return nil
}

// ScheduleStoreForApprove defines the store interface needed by ApproveSchedule.
type ScheduleStoreForApprove interface {
	Get(ctx context.Context, id string) (schedule.Listing, error)
	Approve(ctx context.Context, id, approverID string, at time.Time) error
}

// ApproveScheduleInput carries input for the approve-schedule orchestrator.
type ApproveScheduleInput struct {
	ActorID    string
	ActorRole  string
	ScheduleID string
}

// ApproveScheduleDeps holds dependencies for ApproveSchedule.
type ApproveScheduleDeps struct {
	ScheduleStore ScheduleStoreForApprove
	AccountStore  AccountLookup
	AuditStore    ActionRecorder
	Mailer        email.Sender
	Now           func() time.Time
}

// ExecuteApproveSchedule records admin approval and notifies the creator.
// PRE: ActorRole is admin
// POST: approvedBy and approvedAt are set exactly once
func ExecuteApproveSchedule(ctx context.Context, input ApproveScheduleInput, deps ApproveScheduleDeps) (schedule.Schedule, error) {
	if input.ActorRole != account.RoleAdmin {
		return schedule.Schedule{}, ErrForbidden
	}
	if input.ScheduleID == "" {
		return schedule.Schedule{}, ErrMissingScheduleID
	}
	l, err := deps.ScheduleStore.Get(ctx, input.ScheduleID)
	if err != nil {
		return schedule.Schedule{}, err
	}
	s := l.Schedule
	now := deps.Now()
	if err := s.Approve(input.ActorID, now); err != nil {
		return schedule.Schedule{}, err
	}
	if err := deps.ScheduleStore.Approve(ctx, s.ID, input.ActorID, now); err != nil {
		return schedule.Schedule{}, err
	}
	recordAction(ctx, deps.AuditStore, audit.NewAction(input.ActorID, audit.ActionApproveSchedule, now).WithTarget(s.ID))

	if deps.AccountStore != nil {
		creator, cerr := deps.AccountStore.GetByID(ctx, s.CreatedBy)
		approver, aerr := deps.AccountStore.GetByID(ctx, input.ActorID)
		if cerr == nil && aerr == nil {
			msg, err := email.ScheduleApproved(creator.Email, creator.FullName, email.ScheduleDetails{
				Title:        s.Title,
				EventType:    s.EventType,
				EventDate:    s.EventDate,
				StartTime:    s.StartTime,
				ApproverName: approver.FullName,
			})
			notify(ctx, deps.Mailer, msg, err)
		}
	}
	slog.Info("schedule_event", "event", "approved", "schedule_id", s.ID, "by", input.ActorID)
	return s, nil
}

// TeamStoreForCreate defines the store interface needed by CreateTeam.
type TeamStoreForCreate interface {
	Save(ctx context.Context, t team.Team) error
}

// CreateTeamInput carries input for the create-team orchestrator.
type CreateTeamInput struct {
	ActorID   string
	ActorRole string
	Team      team.Team
}

// CreateTeamDeps holds dependencies for CreateTeam.
type CreateTeamDeps struct {
	TeamStore    TeamStoreForCreate
	AccountStore AccountLookup
	AuditStore   ActionRecorder
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateTeam adds a team schedules can reference.
// PRE: ActorRole is admin; CoachID, when set, names a coach
func ExecuteCreateTeam(ctx context.Context, input CreateTeamInput, deps CreateTeamDeps) (team.Team, error) {
	if input.ActorRole != account.RoleAdmin {
		return team.Team{}, ErrForbidden
	}
	t := input.Team
	t.Name = strings.TrimSpace(t.Name)
	if err := t.Validate(); err != nil {
		return team.Team{}, err
	}
	if t.CoachID != "" {
		coach, err := deps.AccountStore.GetByID(ctx, t.CoachID)
		if err != nil {
			return team.Team{}, err
		}
		if coach.Role != account.RoleCoach {
			return team.Team{}, team.ErrCoachRole
		}
	}
	t.ID = deps.GenerateID()
	if err := deps.TeamStore.Save(ctx, t); err != nil {
		return team.Team{}, err
	}
	recordAction(ctx, deps.AuditStore, audit.NewAction(input.ActorID, audit.ActionCreateTeam, deps.Now()).
		WithTarget(t.ID).WithDetails(t.Name))
	return t, nil
}

package audit

import (
	"time"

	"github.com/google/uuid"
)

// ActionType names a privileged mutation recorded in adminActions.
type ActionType string

const (
	ActionUpdateUserStatus  ActionType = "update_user_status"
	ActionCreateUser        ActionType = "create_user"
	ActionUpdateProfile     ActionType = "update_profile"
	ActionDeleteUser        ActionType = "delete_user"
	ActionDeleteSchedule    ActionType = "delete_schedule"
	ActionApproveSchedule   ActionType = "approve_schedule"
	ActionApproveAttendance ActionType = "approve_attendance"
	ActionCreateTeam        ActionType = "create_team"
	ActionDeleteDrill       ActionType = "delete_drill"
	ActionPurgeSessions     ActionType = "purge_sessions"
)

// Action is a single adminActions row.
type Action struct {
	ID         string     `json:"actionID"`
	ActorID    string     `json:"actorID"`
	ActorName  string     `json:"actorName,omitempty"`
	ActionType ActionType `json:"actionType"`
	TargetID   string     `json:"targetID"`
	Details    string     `json:"details"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// NewAction creates an action by actorID stamped with now.
// PRE: actorID and actionType are non-empty
// POST: Returns an Action with a fresh ID
func NewAction(actorID string, actionType ActionType, now time.Time) Action {
	return Action{
		ID:         uuid.New().String(),
		ActorID:    actorID,
		ActionType: actionType,
		CreatedAt:  now,
	}
}

// WithTarget sets the ID of the row the action changed.
func (a Action) WithTarget(targetID string) Action {
	a.TargetID = targetID
	return a
}

// WithDetails sets a human-readable description.
func (a Action) WithDetails(details string) Action {
	a.Details = details
	return a
}

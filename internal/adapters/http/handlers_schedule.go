package web

import (
	"net/http"

	"clubhub/internal/adapters/http/middleware"
	scheduleStore "clubhub/internal/adapters/storage/schedule"
	"clubhub/internal/application/orchestrators"
	"clubhub/internal/domain/schedule"
	"clubhub/internal/domain/team"
)

type createScheduleRequest struct {
	EventType      string `json:"eventType" validate:"required"`
	Title          string `json:"title" validate:"required,max=200"`
	Description    string `json:"description"`
	EventDate      string `json:"eventDate" validate:"required"`
	StartTime      string `json:"startTime" validate:"required"`
	EndTime        string `json:"endTime" validate:"required"`
	DayOfWeek      string `json:"dayOfWeek" validate:"required"`
	Location       string `json:"location"`
	TeamID         string `json:"teamID"`
	OpponentTeamID string `json:"opponentTeamID"`
	Priority       string `json:"priority"`
	Recurrence     string `json:"recurrence"`
	EventStatus    string `json:"eventStatus"`
	Notes          string `json:"notes"`
}

type updateScheduleRequest struct {
	ScheduleID string `json:"scheduleID"`
	schedule.Patch
}

type createTeamRequest struct {
	TeamName string `json:"teamName" validate:"required,max=100"`
	Sport    string `json:"sport" validate:"required"`
	TeamRank int    `json:"teamRank" validate:"gte=0"`
	CoachID  string `json:"coachID"`
}

var teamOverrides = map[string]error{
	"teamName.required": team.ErrEmptyName,
	"sport.required":    team.ErrInvalidSport,
	"teamRank.gte":      team.ErrNegativeRank,
}

// handleSchedule handles GET/POST/PUT/DELETE for /api/schedule?action=...
// PRE: Caller is authenticated
// POST: Dispatches on method and action; unknown actions are 400
func handleSchedule(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	action := r.URL.Query().Get("action")

	switch r.Method {
	case http.MethodGet:
		switch action {
		case "all-schedules":
			getAllSchedules(w, r)
		case "schedule-by-id":
			getScheduleByID(w, r)
		case "schedules-by-team":
			getSchedulesByTeam(w, r)
		case "teams":
			getTeams(w, r)
		default:
			invalidAction(w)
		}
	case http.MethodPost:
		switch action {
		case "create-schedule":
			postCreateSchedule(w, r, sess)
		case "create-team":
			postCreateTeam(w, r, sess)
		default:
			invalidAction(w)
		}
	case http.MethodPut:
		switch action {
		case "update-schedule":
			putUpdateSchedule(w, r, sess)
		case "approve-schedule":
			putApproveSchedule(w, r, sess)
		default:
			invalidAction(w)
		}
	case http.MethodDelete:
		if action != "delete-schedule" {
			invalidAction(w)
			return
		}
		deleteSchedule(w, r, sess)
	default:
		methodNotAllowed(w)
	}
}

func listSchedules(w http.ResponseWriter, r *http.Request, filter scheduleStore.Filter) {
	list, err := stores.ScheduleStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if list == nil {
		list = []schedule.Listing{}
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"schedules": list, "count": len(list)})
}

func getAllSchedules(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := scheduleStore.Filter{
		EventType:   q.Get("eventType"),
		TeamID:      q.Get("teamID"),
		EventStatus: q.Get("eventStatus"),
		DateFrom:    q.Get("dateFrom"),
		DateTo:      q.Get("dateTo"),
	}
	if filter.EventType != "" && !schedule.IsValidEventType(filter.EventType) {
		respondError(w, r, schedule.ErrInvalidEventType)
		return
	}
	if filter.EventStatus != "" && !schedule.IsValidStatus(filter.EventStatus) {
		respondError(w, r, schedule.ErrInvalidStatus)
		return
	}
	for _, d := range []string{filter.DateFrom, filter.DateTo} {
		if d != "" && !schedule.IsValidDate(d) {
			respondError(w, r, schedule.ErrInvalidDate)
			return
		}
	}
	listSchedules(w, r, filter)
}

func getScheduleByID(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("scheduleID")
	if id == "" {
		respondError(w, r, orchestrators.ErrMissingScheduleID)
		return
	}
	s, err := stores.ScheduleStore.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"schedule": s})
}

func getSchedulesByTeam(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("teamID")
	if teamID == "" {
		writeError(w, http.StatusBadRequest, "teamID is required")
		return
	}
	listSchedules(w, r, scheduleStore.Filter{TeamID: teamID})
}

func getTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := stores.TeamStore.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	if teams == nil {
		teams = []team.Team{}
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"teams": teams, "count": len(teams)})
}

func postCreateSchedule(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req createScheduleRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateRequest(req, map[string]error{"title.required": schedule.ErrEmptyTitle}); err != nil {
		respondError(w, r, err)
		return
	}
	s, err := orchestrators.ExecuteCreateSchedule(r.Context(), orchestrators.CreateScheduleInput{
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
		Schedule: schedule.Schedule{
			EventType:      req.EventType,
			Title:          req.Title,
			Description:    req.Description,
			EventDate:      req.EventDate,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			DayOfWeek:      req.DayOfWeek,
			Location:       req.Location,
			TeamID:         req.TeamID,
			OpponentTeamID: req.OpponentTeamID,
			Priority:       req.Priority,
			Recurrence:     req.Recurrence,
			EventStatus:    req.EventStatus,
			Notes:          req.Notes,
		},
	}, orchestrators.CreateScheduleDeps{
		ScheduleStore: stores.ScheduleStore,
		TeamStore:     stores.TeamStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Schedule created successfully", map[string]any{
		"scheduleID": s.ID,
		"schedule":   s,
	})
}

func putUpdateSchedule(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req updateScheduleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	s, err := orchestrators.ExecuteUpdateSchedule(r.Context(), orchestrators.UpdateScheduleInput{
		ActorID:    sess.AccountID,
		ActorRole:  sess.Role,
		ScheduleID: req.ScheduleID,
		Patch:      req.Patch,
	}, orchestrators.UpdateScheduleDeps{
		ScheduleStore: stores.ScheduleStore,
		TeamStore:     stores.TeamStore,
		Now:           timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Schedule updated successfully", map[string]any{"schedule": s})
}

func putApproveSchedule(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req struct {
		ScheduleID string `json:"scheduleID"`
	}
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	s, err := orchestrators.ExecuteApproveSchedule(r.Context(), orchestrators.ApproveScheduleInput{
		ActorID:    sess.AccountID,
		ActorRole:  sess.Role,
		ScheduleID: req.ScheduleID,
	}, orchestrators.ApproveScheduleDeps{
		ScheduleStore: stores.ScheduleStore,
		AccountStore:  stores.AccountStore,
		AuditStore:    stores.AuditStore,
		Mailer:        mailer,
		Now:           timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Schedule approved successfully", map[string]any{"schedule": s})
}

func deleteSchedule(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	err := orchestrators.ExecuteDeleteSchedule(r.Context(), orchestrators.DeleteScheduleInput{
		ActorID:    sess.AccountID,
		ActorRole:  sess.Role,
		ScheduleID: r.URL.Query().Get("scheduleID"),
	}, orchestrators.DeleteScheduleDeps{
		ScheduleStore: stores.ScheduleStore,
		AuditStore:    stores.AuditStore,
		Now:           timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Schedule deleted successfully", nil)
}

func postCreateTeam(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req createTeamRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateRequest(req, teamOverrides); err != nil {
		respondError(w, r, err)
		return
	}
	t, err := orchestrators.ExecuteCreateTeam(r.Context(), orchestrators.CreateTeamInput{
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
		Team: team.Team{
			Name:    req.TeamName,
			Sport:   req.Sport,
			Rank:    req.TeamRank,
			CoachID: req.CoachID,
		},
	}, orchestrators.CreateTeamDeps{
		TeamStore:    stores.TeamStore,
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Team created successfully", map[string]any{"teamID": t.ID, "team": t})
}

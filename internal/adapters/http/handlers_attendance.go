package web

import (
	"fmt"
	"net/http"
	"strconv"

	"clubhub/internal/adapters/http/middleware"
	"clubhub/internal/application/orchestrators"
	"clubhub/internal/application/projections"
	"clubhub/internal/domain/account"
	"clubhub/internal/domain/attendance"
)

type recordAttendanceRequest struct {
	PlayerID       string `json:"playerID" validate:"required"`
	ScheduleID     string `json:"scheduleID" validate:"required"`
	Status         string `json:"status" validate:"required"`
	AttendanceDate string `json:"attendanceDate"`
	Notes          string `json:"notes" validate:"max=1000"`
}

type updateUserStatusRequest struct {
	UserID string `json:"userID" validate:"required"`
	Status string `json:"status" validate:"required,oneof=Active notActive"`
}

type updateAttendanceRequest struct {
	AttendanceID   string  `json:"attendanceID"`
	Status         *string `json:"status"`
	Notes          *string `json:"notes"`
	AttendanceDate *string `json:"attendanceDate"`
}

var statusOverrides = map[string]error{
	"userID.required": orchestrators.ErrMissingUserID,
	"status.required": account.ErrInvalidStatus,
	"status.oneof":    account.ErrInvalidStatus,
}

var recordOverrides = map[string]error{
	"playerID.required":   attendance.ErrEmptyPlayerID,
	"scheduleID.required": attendance.ErrEmptyScheduleID,
	"status.required":     attendance.ErrInvalidStatus,
}

// handleAttendance handles GET/POST/PUT for /api/attendance?action=...
// PRE: Caller is authenticated
// POST: Dispatches on method and action; unknown actions are 400
func handleAttendance(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	action := r.URL.Query().Get("action")

	switch r.Method {
	case http.MethodGet:
		switch action {
		case "player-attendance":
			getPlayerAttendance(w, r, sess)
		case "schedule-attendance":
			getScheduleAttendance(w, r, sess)
		case "attendance-stats":
			getAttendanceStats(w, r, sess)
		case "users-by-role":
			getUsersByRole(w, r, sess)
		case "export-attendance":
			exportAttendance(w, r, sess)
		default:
			invalidAction(w)
		}
	case http.MethodPost:
		switch action {
		case "record-attendance":
			postRecordAttendance(w, r, sess)
		case "update-user-status":
			postUpdateUserStatus(w, r, sess)
		default:
			invalidAction(w)
		}
	case http.MethodPut:
		switch action {
		case "update-attendance":
			putUpdateAttendance(w, r, sess)
		case "approve-attendance":
			putApproveAttendance(w, r, sess)
		default:
			invalidAction(w)
		}
	default:
		methodNotAllowed(w)
	}
}

func attendanceQuery(r *http.Request, sess middleware.Session) projections.AttendanceQuery {
	q := r.URL.Query()
	return projections.AttendanceQuery{
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
		PlayerID:  q.Get("playerID"),
		DateFrom:  q.Get("dateFrom"),
		DateTo:    q.Get("dateTo"),
	}
}

func attendanceDeps() projections.GetAttendanceDeps {
	return projections.GetAttendanceDeps{AttendanceStore: stores.AttendanceStore}
}

func getPlayerAttendance(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	rows, err := projections.QueryGetPlayerAttendance(r.Context(), attendanceQuery(r, sess), attendanceDeps())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"attendance": rows, "count": len(rows)})
}

func getScheduleAttendance(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	rows, err := projections.QueryGetScheduleAttendance(r.Context(), projections.ScheduleAttendanceQuery{
		ActorRole:  sess.Role,
		ScheduleID: r.URL.Query().Get("scheduleID"),
	}, attendanceDeps())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"attendance": rows, "count": len(rows)})
}

func getAttendanceStats(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	stats, err := projections.QueryGetAttendanceStats(r.Context(), attendanceQuery(r, sess), attendanceDeps())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"stats": stats})
}

// getUsersByRole lists users, optionally of one role. Restricted to admin,
// trainingManagement and medicalStaff.
func getUsersByRole(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	if !account.CanListByRole(sess.Role) {
		respondError(w, r, account.ErrForbidden)
		return
	}
	roles := account.ValidRoles
	if role := r.URL.Query().Get("role"); role != "" {
		if !account.IsValidRole(role) {
			respondError(w, r, account.ErrInvalidRole)
			return
		}
		roles = []string{role}
	}
	users, err := stores.AccountStore.ListByRoles(r.Context(), roles)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if users == nil {
		users = []account.Account{}
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"users": users, "count": len(users)})
}

func exportAttendance(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	export, err := projections.QueryExportAttendance(r.Context(), attendanceQuery(r, sess), attendanceDeps())
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(export.Content)
}

func postRecordAttendance(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req recordAttendanceRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateRequest(req, recordOverrides); err != nil {
		respondError(w, r, err)
		return
	}
	a, err := orchestrators.ExecuteRecordAttendance(r.Context(), orchestrators.RecordAttendanceInput{
		ActorID:        sess.AccountID,
		ActorRole:      sess.Role,
		PlayerID:       req.PlayerID,
		ScheduleID:     req.ScheduleID,
		Status:         req.Status,
		AttendanceDate: req.AttendanceDate,
		Notes:          req.Notes,
	}, orchestrators.RecordAttendanceDeps{
		AttendanceStore: stores.AttendanceStore,
		AccountStore:    stores.AccountStore,
		ScheduleStore:   stores.ScheduleStore,
		GenerateID:      generateID,
		Now:             timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Attendance recorded successfully", map[string]any{
		"attendanceID": a.ID,
		"attendance":   a,
	})
}

func postUpdateUserStatus(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req updateUserStatusRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateRequest(req, statusOverrides); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := orchestrators.ExecuteUpdateUserStatus(r.Context(), orchestrators.UpdateUserStatusInput{
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
		UserID:    req.UserID,
		Status:    req.Status,
	}, orchestrators.UpdateUserStatusDeps{
		AccountStore: stores.AccountStore,
		SessionStore: stores.SessionStore,
		AuditStore:   stores.AuditStore,
		Mailer:       mailer,
		Now:          timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	if result.NewStatus == account.StatusNotActive {
		hub.Disconnect(req.UserID)
	}
	writeSuccess(w, http.StatusOK, "User status updated successfully", map[string]any{
		"userID":    req.UserID,
		"oldStatus": result.OldStatus,
		"newStatus": result.NewStatus,
	})
}

func putUpdateAttendance(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req updateAttendanceRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	a, err := orchestrators.ExecuteUpdateAttendance(r.Context(), orchestrators.UpdateAttendanceInput{
		ActorID:      sess.AccountID,
		ActorRole:    sess.Role,
		AttendanceID: req.AttendanceID,
		Patch: attendance.Patch{
			Status:         req.Status,
			Notes:          req.Notes,
			AttendanceDate: req.AttendanceDate,
		},
	}, orchestrators.UpdateAttendanceDeps{
		AttendanceStore: stores.AttendanceStore,
		Now:             timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Attendance updated successfully", map[string]any{"attendance": a})
}

func putApproveAttendance(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req struct {
		AttendanceID string `json:"attendanceID"`
	}
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.AttendanceID == "" {
		respondError(w, r, orchestrators.ErrMissingAttendanceID)
		return
	}
	err := orchestrators.ExecuteApproveAttendance(r.Context(), orchestrators.ApproveAttendanceInput{
		ActorID:      sess.AccountID,
		ActorRole:    sess.Role,
		AttendanceID: req.AttendanceID,
	}, orchestrators.ApproveAttendanceDeps{
		AttendanceStore: stores.AttendanceStore,
		AuditStore:      stores.AuditStore,
		Now:             timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Attendance approved", map[string]any{"attendanceID": req.AttendanceID})
}

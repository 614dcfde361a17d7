package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"clubhub/internal/adapters/http/middleware"
	"clubhub/internal/application/orchestrators"
	"clubhub/internal/application/projections"
	"clubhub/internal/domain/account"
	"clubhub/internal/domain/attendance"
	"clubhub/internal/domain/chat"
	"clubhub/internal/domain/drill"
	"clubhub/internal/domain/profile"
	"clubhub/internal/domain/schedule"
	"clubhub/internal/domain/session"
	"clubhub/internal/domain/team"
)

// Envelope status values.
const (
	statusSuccess = "success"
	statusError   = "error"
)

var (
	errInvalidJSON   = errors.New("Invalid JSON")
	errInvalidAction = errors.New("Invalid action")
	errMethod        = errors.New("Method not allowed")
)

// errorStatus maps client-facing sentinels to HTTP status codes.
// Anything unlisted is an internal error.
var errorStatus = []struct {
	err    error
	status int
}{
	{account.ErrWrongPassword, http.StatusUnauthorized},

	{account.ErrForbidden, http.StatusForbidden},
	{orchestrators.ErrAccountInactive, http.StatusForbidden},
	{chat.ErrNotGroupMember, http.StatusForbidden},
	{chat.ErrNotGroupAdmin, http.StatusForbidden},

	{account.ErrNotFound, http.StatusNotFound},
	{attendance.ErrNotFound, http.StatusNotFound},
	{attendance.ErrPlayerInactive, http.StatusNotFound},
	{schedule.ErrNotFound, http.StatusNotFound},
	{team.ErrNotFound, http.StatusNotFound},
	{team.ErrCoachRole, http.StatusBadRequest},
	{chat.ErrGroupNotFound, http.StatusNotFound},
	{chat.ErrMessageNotFound, http.StatusNotFound},
	{chat.ErrReceiverMissing, http.StatusNotFound},
	{chat.ErrUserNotFound, http.StatusNotFound},
	{chat.ErrNotMember, http.StatusNotFound},
	{drill.ErrNotFound, http.StatusNotFound},

	{account.ErrEmailTaken, http.StatusConflict},
	{attendance.ErrDuplicate, http.StatusConflict},
	{attendance.ErrAlreadyApproved, http.StatusConflict},
	{schedule.ErrAlreadyApproved, http.StatusConflict},
	{schedule.ErrHasAttendance, http.StatusConflict},
	{chat.ErrAlreadyMember, http.StatusConflict},
	{chat.ErrLastAdmin, http.StatusConflict},

	{errInvalidJSON, http.StatusBadRequest},
	{errInvalidAction, http.StatusBadRequest},
	{orchestrators.ErrNoSuchEmail, http.StatusBadRequest},
	{orchestrators.ErrMissingUserID, http.StatusBadRequest},
	{orchestrators.ErrSelfStatusChange, http.StatusBadRequest},
	{orchestrators.ErrMissingGroupID, http.StatusBadRequest},
	{orchestrators.ErrMissingChatID, http.StatusBadRequest},
	{orchestrators.ErrMissingScheduleID, http.StatusBadRequest},
	{orchestrators.ErrMissingAttendanceID, http.StatusBadRequest},
	{orchestrators.ErrCurrentPasswordWrong, http.StatusBadRequest},
	{orchestrators.ErrNewPasswordSame, http.StatusBadRequest},
	{projections.ErrMissingScheduleID, http.StatusBadRequest},
	{session.ErrNotLoggedIn, http.StatusBadRequest},
	{session.ErrInvalidSession, http.StatusBadRequest},
	{session.ErrAlreadyEnded, http.StatusBadRequest},
	{account.ErrEmptyEmail, http.StatusBadRequest},
	{account.ErrInvalidEmail, http.StatusBadRequest},
	{account.ErrEmailTooLong, http.StatusBadRequest},
	{account.ErrEmptyFullName, http.StatusBadRequest},
	{account.ErrFullNameTooLong, http.StatusBadRequest},
	{account.ErrInvalidRole, http.StatusBadRequest},
	{account.ErrInvalidStatus, http.StatusBadRequest},
	{account.ErrEmptyPassword, http.StatusBadRequest},
	{account.ErrPasswordTooShort, http.StatusBadRequest},
	{attendance.ErrEmptyPlayerID, http.StatusBadRequest},
	{attendance.ErrEmptyScheduleID, http.StatusBadRequest},
	{attendance.ErrInvalidStatus, http.StatusBadRequest},
	{attendance.ErrInvalidDate, http.StatusBadRequest},
	{attendance.ErrNoFields, http.StatusBadRequest},
	{schedule.ErrEmptyTitle, http.StatusBadRequest},
	{schedule.ErrInvalidEventType, http.StatusBadRequest},
	{schedule.ErrInvalidDay, http.StatusBadRequest},
	{schedule.ErrInvalidPriority, http.StatusBadRequest},
	{schedule.ErrInvalidRecurrence, http.StatusBadRequest},
	{schedule.ErrInvalidStatus, http.StatusBadRequest},
	{schedule.ErrInvalidDate, http.StatusBadRequest},
	{schedule.ErrInvalidTime, http.StatusBadRequest},
	{schedule.ErrEndBeforeStart, http.StatusBadRequest},
	{schedule.ErrSameTeams, http.StatusBadRequest},
	{schedule.ErrNoFields, http.StatusBadRequest},
	{team.ErrEmptyName, http.StatusBadRequest},
	{team.ErrInvalidSport, http.StatusBadRequest},
	{team.ErrNegativeRank, http.StatusBadRequest},
	{chat.ErrEmptyGroupName, http.StatusBadRequest},
	{chat.ErrGroupNameTooLong, http.StatusBadRequest},
	{chat.ErrInvalidAvatarURL, http.StatusBadRequest},
	{chat.ErrEmptySenderID, http.StatusBadRequest},
	{chat.ErrNoRecipient, http.StatusBadRequest},
	{chat.ErrTwoRecipients, http.StatusBadRequest},
	{chat.ErrEmptyMessage, http.StatusBadRequest},
	{chat.ErrMessageTooLong, http.StatusBadRequest},
	{chat.ErrSelfMessage, http.StatusBadRequest},
	{chat.ErrEmptyEmoji, http.StatusBadRequest},
	{chat.ErrEmojiTooLong, http.StatusBadRequest},
	{profile.ErrNoFields, http.StatusBadRequest},
	{profile.ErrUnknownField, http.StatusBadRequest},
	{profile.ErrInvalidNumber, http.StatusBadRequest},
	{profile.ErrInvalidDate, http.StatusBadRequest},
	{profile.ErrInvalidText, http.StatusBadRequest},
	{profile.ErrContractRange, http.StatusBadRequest},
	{profile.ErrConfirmDelete, http.StatusBadRequest},
	{drill.ErrEmptyName, http.StatusBadRequest},
	{drill.ErrNameTooLong, http.StatusBadRequest},
	{drill.ErrInvalidDifficulty, http.StatusBadRequest},
	{drill.ErrDescriptionLong, http.StatusBadRequest},
	{drill.ErrInvalidVideoLink, http.StatusBadRequest},
}

// statusFor returns the HTTP status for err, or 500 when err is not client-facing.
func statusFor(err error) int {
	var verr validationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeJSON writes payload with the given status.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

// writeSuccess writes the success envelope merged with payload keys.
func writeSuccess(w http.ResponseWriter, status int, message string, payload map[string]any) {
	body := map[string]any{"status": statusSuccess}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeError writes the error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": statusError, "message": message})
}

// respondError maps err to a status and writes it. Unknown errors become 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		internalError(w, r, err)
		return
	}
	if status == http.StatusForbidden {
		if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
			slog.Warn("auth_denied", "path", r.URL.Path, "action", actionOf(r), "uid", sess.AccountID, "role", sess.Role)
		}
	}
	writeError(w, status, err.Error())
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "path", r.URL.Path, "action", actionOf(r), "error", err.Error())
	writeError(w, http.StatusInternalServerError, "Server error")
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errMethod.Error())
}

func invalidAction(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, errInvalidAction.Error())
}

// actionOf returns the action or module query parameter routing r.
func actionOf(r *http.Request) string {
	q := r.URL.Query()
	if a := q.Get("action"); a != "" {
		return a
	}
	return q.Get("module")
}

// currentSession returns the caller or writes 401.
func currentSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return middleware.Session{}, false
	}
	return sess, true
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		slog.Debug("decode_failed", "path", r.URL.Path, "error", err)
		return errInvalidJSON
	}
	return nil
}

// decodeBody decodes JSON from the request body, ignoring unknown fields.
// Used by partial updates where unrecognised keys are not errors.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Debug("decode_failed", "path", r.URL.Path, "error", err)
		return errInvalidJSON
	}
	return nil
}

// validationError carries a client-facing message built from a validator tag.
type validationError struct {
	msg string
}

func (e validationError) Error() string { return e.msg }

// validate is shared; validator caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks struct tags on a request DTO. overrides maps
// "field.tag" to the sentinel a failure should surface as.
// POST: Returns nil, an override sentinel, or a validationError for the first failed field
func validateRequest(req any, overrides map[string]error) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	if sentinel, ok := overrides[fe.Field()+"."+fe.Tag()]; ok {
		return sentinel
	}
	return validationError{msg: fieldMessage(fe)}
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return account.ErrInvalidEmail.Error()
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("Invalid %s. Must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url", "http_url":
		return field + " must be a valid URL"
	}
	return "Invalid " + field
}

// credentialOverrides keeps login and password messages identical to the account domain.
var credentialOverrides = map[string]error{
	"email.required":       account.ErrEmptyEmail,
	"email.email":          account.ErrInvalidEmail,
	"email.max":            account.ErrEmailTooLong,
	"password.required":    account.ErrEmptyPassword,
	"password.min":         account.ErrPasswordTooShort,
	"newPassword.required": account.ErrEmptyPassword,
	"newPassword.min":      account.ErrPasswordTooShort,
}

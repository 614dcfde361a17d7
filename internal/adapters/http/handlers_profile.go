package web

import (
	"net/http"
	"strings"

	"clubhub/internal/adapters/http/middleware"
	"clubhub/internal/application/orchestrators"
	"clubhub/internal/application/projections"
	"clubhub/internal/domain/account"
	"clubhub/internal/domain/profile"
)

type createUserRequest struct {
	FullName    string `json:"fullName" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"required,oneof=player coach medicalStaff trainingManagement manager admin"`
	Status      string `json:"status" validate:"omitempty,oneof=Active notActive"`
	PhoneNumber string `json:"phoneNumber"`
	Gender      string `json:"gender"`
	DOB         string `json:"dob"`
	Nationality string `json:"nationality"`
	NationalID  string `json:"nationalID"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

var createUserOverrides = map[string]error{
	"fullName.required": account.ErrEmptyFullName,
	"fullName.max":      account.ErrFullNameTooLong,
	"role.required":     account.ErrInvalidRole,
	"role.oneof":        account.ErrInvalidRole,
	"status.oneof":      account.ErrInvalidStatus,
}

// userFields are the users-table columns a profile update may touch.
var userFields = map[string]bool{"email": true, "pass": true, "status": true, "phoneNumber": true}

// handleProfile handles GET/POST/PUT/DELETE for /api/profile?module=...
// PRE: Caller is authenticated
// POST: Dispatches on method and module; unknown modules are 400
func handleProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	module := r.URL.Query().Get("module")

	switch r.Method {
	case http.MethodGet:
		switch module {
		case "me":
			getProfile(w, r, sess)
		case "activity":
			getActivity(w, r, sess)
		default:
			invalidAction(w)
		}
	case http.MethodPut:
		if module != "me" {
			invalidAction(w)
			return
		}
		putProfile(w, r, sess)
	case http.MethodPost:
		switch module {
		case "create-user":
			postCreateUser(w, r, sess)
		case "change-password":
			postChangePassword(w, r, sess)
		default:
			invalidAction(w)
		}
	case http.MethodDelete:
		if module != "me" {
			invalidAction(w)
			return
		}
		deleteProfile(w, r, sess)
	default:
		methodNotAllowed(w)
	}
}

// getProfile returns the caller's profile, or another user's when staff pass ?uid.
func getProfile(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	uid := r.URL.Query().Get("uid")
	if uid == "" {
		uid = sess.AccountID
	}
	if uid != sess.AccountID && !account.IsStaff(sess.Role) {
		respondError(w, r, account.ErrForbidden)
		return
	}
	p, err := stores.ProfileStore.Get(r.Context(), uid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"profile": p})
}

// splitProfilePatch separates users-table fields from role detail fields.
func splitProfilePatch(body map[string]any) (profile.Patch, error) {
	patch := profile.Patch{Details: map[string]any{}}
	for key, raw := range body {
		if !userFields[key] {
			patch.Details[key] = raw
			continue
		}
		v, ok := raw.(string)
		if !ok {
			return profile.Patch{}, validationError{msg: key + " must be a string"}
		}
		switch key {
		case "email":
			patch.User.Email = &v
		case "pass":
			patch.User.Password = &v
		case "status":
			patch.User.Status = &v
		case "phoneNumber":
			v = strings.TrimSpace(v)
			patch.User.PhoneNumber = &v
		}
	}
	return patch, nil
}

func putProfile(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var body map[string]any
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	patch, err := splitProfilePatch(body)
	if err != nil {
		respondError(w, r, err)
		return
	}
	p, err := orchestrators.ExecuteUpdateProfile(r.Context(), orchestrators.UpdateProfileInput{
		ActorID:   sess.AccountID,
		ActorRole: sess.Role,
		TargetID:  r.URL.Query().Get("uid"),
		Patch:     patch,
	}, orchestrators.UpdateProfileDeps{
		ProfileStore: stores.ProfileStore,
		SessionStore: stores.SessionStore,
		AuditStore:   stores.AuditStore,
		TeamStore:    stores.TeamStore,
		Now:          timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	if p.Status == account.StatusNotActive {
		hub.Disconnect(p.ID)
	}
	writeSuccess(w, http.StatusOK, "Profile updated successfully", map[string]any{"profile": p})
}

func postCreateUser(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req createUserRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateRequest(req, mergeOverrides(credentialOverrides, createUserOverrides)); err != nil {
		respondError(w, r, err)
		return
	}
	a, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		ActorID:     sess.AccountID,
		ActorRole:   sess.Role,
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		Status:      req.Status,
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
		DOB:         req.DOB,
		Nationality: req.Nationality,
		NationalID:  req.NationalID,
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "User created successfully", map[string]any{"uid": a.ID, "user": a})
}

func postChangePassword(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req changePasswordRequest
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := validateRequest(req, mergeOverrides(credentialOverrides, map[string]error{
		"currentPassword.required": orchestrators.ErrCurrentPasswordWrong,
	})); err != nil {
		respondError(w, r, err)
		return
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		SessionID:       sess.SessionID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}, orchestrators.ChangePasswordDeps{
		AccountStore: stores.AccountStore,
		SessionStore: stores.SessionStore,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Password changed successfully", nil)
}

func getActivity(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	activity, err := projections.QueryGetActivity(r.Context(), projections.GetActivityQuery{
		AccountID: sess.AccountID,
		SessionID: sess.SessionID,
	}, projections.GetActivityDeps{
		ActionStore:  stores.AuditStore,
		SessionStore: stores.SessionStore,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{"activity": activity})
}

func deleteProfile(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req struct {
		Confirm string `json:"confirm"`
	}
	if err := strictDecode(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	err := orchestrators.ExecuteDeleteAccount(r.Context(), orchestrators.DeleteAccountInput{
		AccountID: sess.AccountID,
		Confirm:   req.Confirm,
	}, orchestrators.DeleteAccountDeps{
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
		Now:          timeNow,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	middleware.ClearSessionCookie(w)
	hub.Disconnect(sess.AccountID)
	writeSuccess(w, http.StatusOK, "Account deleted", nil)
}

func mergeOverrides(sets ...map[string]error) map[string]error {
	out := map[string]error{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = v
		}
	}
	return out
}

package web

import (
	"net/http"
	"strings"
	"testing"

	"clubhub/internal/application/orchestrators"
	"clubhub/internal/domain/account"
	"clubhub/internal/domain/profile"
	"clubhub/internal/domain/team"
)

func TestGetProfile(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)

	rec := e.do(t, http.MethodGet, "/api/profile?module=me", c.playerToken, nil)
	body := expect(t, rec, http.StatusOK)
	p, _ := body["profile"].(map[string]any)
	if p["uid"] != c.playerID || p["role"] != account.RolePlayer {
		t.Errorf("unexpected profile %v", p)
	}
	if _, ok := p["pass"]; ok {
		t.Error("password hash must not be serialised")
	}

	rec = e.do(t, http.MethodGet, "/api/profile?module=me&uid="+c.otherID, c.playerToken, nil)
	expect(t, rec, http.StatusForbidden)

	rec = e.do(t, http.MethodGet, "/api/profile?module=me&uid="+c.playerID, c.coachToken, nil)
	expect(t, rec, http.StatusOK)

	rec = e.do(t, http.MethodGet, "/api/profile?module=me&uid=missing", c.coachToken, nil)
	expect(t, rec, http.StatusNotFound)

	rec = e.do(t, http.MethodGet, "/api/profile?module=other", c.playerToken, nil)
	expect(t, rec, http.StatusBadRequest)
}

func TestPutProfile(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)

	tests := []struct {
		name        string
		token       string
		target      string
		body        map[string]any
		wantStatus  int
		wantMessage string
	}{
		{
			name:       "player edits own details",
			token:      c.playerToken,
			body:       map[string]any{"position": "Striker", "playerHeight": 181.5, "phoneNumber": " 0400 000 000 "},
			wantStatus: http.StatusOK,
		},
		{
			name:        "only unknown detail fields",
			token:       c.playerToken,
			body:        map[string]any{"shoeSize": 44},
			wantStatus:  http.StatusBadRequest,
			wantMessage: profile.ErrNoFields.Error(),
		},
		{
			name:        "unknown detail field beside a known one",
			token:       c.playerToken,
			body:        map[string]any{"shoeSize": 44, "position": "Keeper"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: profile.ErrUnknownField.Error(),
		},
		{
			name:        "empty patch",
			token:       c.playerToken,
			body:        map[string]any{},
			wantStatus:  http.StatusBadRequest,
			wantMessage: profile.ErrNoFields.Error(),
		},
		{
			name:       "negative height",
			token:      c.playerToken,
			body:       map[string]any{"playerHeight": -3},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "player cannot change own status",
			token:      c.playerToken,
			body:       map[string]any{"status": account.StatusNotActive},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "player cannot edit someone else",
			token:      c.playerToken,
			target:     c.otherID,
			body:       map[string]any{"position": "Keeper"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:        "email must be a string",
			token:       c.playerToken,
			body:        map[string]any{"email": 12},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "email must be a string",
		},
		{
			name:        "email already taken",
			token:       c.playerToken,
			body:        map[string]any{"email": "other@club.test"},
			wantStatus:  http.StatusConflict,
			wantMessage: account.ErrEmailTaken.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/api/profile?module=me"
			if tt.target != "" {
				target += "&uid=" + tt.target
			}
			rec := e.do(t, http.MethodPut, target, tt.token, tt.body)
			body := expect(t, rec, tt.wantStatus)
			if tt.wantMessage != "" {
				msg, _ := body["message"].(string)
				if !strings.HasPrefix(msg, tt.wantMessage) {
					t.Errorf("got message %q, want prefix %q", msg, tt.wantMessage)
				}
			}
		})
	}

	rec := e.do(t, http.MethodGet, "/api/profile?module=me", c.playerToken, nil)
	body := expect(t, rec, http.StatusOK)
	p, _ := body["profile"].(map[string]any)
	details, _ := p["details"].(map[string]any)
	if details["position"] != "Striker" {
		t.Errorf("got position %v, want Striker", details["position"])
	}
	if p["phoneNumber"] != "0400 000 000" {
		t.Errorf("got phoneNumber %q", p["phoneNumber"])
	}
}

func TestPutProfile_AdminDeactivates(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)

	rec := e.do(t, http.MethodPut, "/api/profile?module=me&uid="+c.playerID, c.adminToken, map[string]any{
		"status": account.StatusNotActive,
	})
	body := expect(t, rec, http.StatusOK)
	p, _ := body["profile"].(map[string]any)
	if p["status"] != account.StatusNotActive {
		t.Errorf("got status %v", p["status"])
	}

	rec = e.do(t, http.MethodGet, "/api/userinfo", c.playerToken, nil)
	expect(t, rec, http.StatusUnauthorized)

	rec = e.do(t, http.MethodGet, "/api/admin/actions?targetID="+c.playerID, c.adminToken, nil)
	body = expect(t, rec, http.StatusOK)
	if body["count"] != float64(1) {
		t.Errorf("expected the profile edit in the action log, got count %v", body["count"])
	}
}

func TestPutProfile_AdminOwnStatus(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)

	for _, target := range []string{"/api/profile?module=me", "/api/profile?module=me&uid=" + c.adminID} {
		rec := e.do(t, http.MethodPut, target, c.adminToken, map[string]any{"status": account.StatusNotActive})
		body := expect(t, rec, http.StatusBadRequest)
		if body["message"] != orchestrators.ErrSelfStatusChange.Error() {
			t.Errorf("got message %v", body["message"])
		}
	}

	rec := e.do(t, http.MethodGet, "/api/profile?module=me", c.adminToken, nil)
	body := expect(t, rec, http.StatusOK)
	p, _ := body["profile"].(map[string]any)
	if p["status"] != account.StatusActive {
		t.Errorf("got status %v, want %s", p["status"], account.StatusActive)
	}
}

func TestPutProfile_Team(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)

	rec := e.do(t, http.MethodPost, "/api/schedule?action=create-team", c.adminToken, map[string]any{
		"teamName": "First XI",
		"sport":    "Football",
	})
	body := expect(t, rec, http.StatusCreated)
	teamID, _ := body["teamID"].(string)

	teamOf := func() any {
		t.Helper()
		rec := e.do(t, http.MethodGet, "/api/profile?module=me", c.playerToken, nil)
		body := expect(t, rec, http.StatusOK)
		p, _ := body["profile"].(map[string]any)
		details, _ := p["details"].(map[string]any)
		return details["teamID"]
	}

	rec = e.do(t, http.MethodPut, "/api/profile?module=me", c.playerToken, map[string]any{"teamID": "no-such-team"})
	body = expect(t, rec, http.StatusNotFound)
	if body["message"] != team.ErrNotFound.Error() {
		t.Errorf("got message %v", body["message"])
	}

	rec = e.do(t, http.MethodPut, "/api/profile?module=me", c.playerToken, map[string]any{"teamID": teamID})
	expect(t, rec, http.StatusOK)
	if got := teamOf(); got != teamID {
		t.Errorf("got teamID %v, want %s", got, teamID)
	}

	rec = e.do(t, http.MethodPut, "/api/profile?module=me", c.playerToken, map[string]any{"teamID": ""})
	expect(t, rec, http.StatusOK)
	if got := teamOf(); got != nil {
		t.Errorf("got teamID %v, want null", got)
	}
}

func TestPostCreateUser(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)

	newUser := func(email, role string) map[string]any {
		return map[string]any{
			"fullName": "Nina New",
			"email":    email,
			"password": "welcome1",
			"role":     role,
		}
	}

	tests := []struct {
		name        string
		token       string
		body        map[string]any
		wantStatus  int
		wantMessage string
	}{
		{"admin creates coach", c.adminToken, newUser("nina@club.test", account.RoleCoach), http.StatusCreated, ""},
		{"duplicate email", c.adminToken, newUser("nina@club.test", account.RoleCoach), http.StatusConflict, account.ErrEmailTaken.Error()},
		{"invalid role", c.adminToken, newUser("wiz@club.test", "wizard"), http.StatusBadRequest, account.ErrInvalidRole.Error()},
		{"short password", c.adminToken, func() map[string]any {
			b := newUser("short@club.test", account.RolePlayer)
			b["password"] = "abc"
			return b
		}(), http.StatusBadRequest, account.ErrPasswordTooShort.Error()},
		{"non-admin denied", c.tmToken, newUser("tm2@club.test", account.RolePlayer), http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/api/profile?module=create-user", tt.token, tt.body)
			body := expect(t, rec, tt.wantStatus)
			if tt.wantMessage != "" && body["message"] != tt.wantMessage {
				t.Errorf("got message %v, want %q", body["message"], tt.wantMessage)
			}
		})
	}

	rec := e.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "nina@club.test", "password": "welcome1"})
	expect(t, rec, http.StatusOK)
}

func TestPostChangePassword(t *testing.T) {
	e := newTestEnv(t)
	e.createUser(t, "Pia Player", "player@club.test", account.RolePlayer)
	current := e.login(t, "player@club.test")
	other := e.login(t, "player@club.test")

	rec := e.do(t, http.MethodPost, "/api/profile?module=change-password", current, map[string]string{
		"currentPassword": "wrong-pass",
		"newPassword":     "brandnew1",
	})
	expect(t, rec, http.StatusBadRequest)

	rec = e.do(t, http.MethodPost, "/api/profile?module=change-password", current, map[string]string{
		"currentPassword": testPassword,
		"newPassword":     testPassword,
	})
	expect(t, rec, http.StatusBadRequest)

	rec = e.do(t, http.MethodPost, "/api/profile?module=change-password", current, map[string]string{
		"currentPassword": testPassword,
		"newPassword":     "brandnew1",
	})
	expect(t, rec, http.StatusOK)

	// The calling session survives; every other session ends.
	expect(t, e.do(t, http.MethodGet, "/api/userinfo", current, nil), http.StatusOK)
	expect(t, e.do(t, http.MethodGet, "/api/userinfo", other, nil), http.StatusUnauthorized)

	rec = e.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "player@club.test", "password": "brandnew1"})
	expect(t, rec, http.StatusOK)
}

func TestGetActivity(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.userWithToken(t, "Pia Player", "player@club.test", account.RolePlayer)

	rec := e.do(t, http.MethodGet, "/api/profile?module=activity", token, nil)
	body := expect(t, rec, http.StatusOK)
	activity, _ := body["activity"].(map[string]any)
	sessions, _ := activity["sessions"].([]any)
	if len(sessions) != 1 {
		t.Errorf("got %d sessions, want 1", len(sessions))
	}
}

func TestDeleteProfile(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.userWithToken(t, "Pia Player", "player@club.test", account.RolePlayer)

	rec := e.do(t, http.MethodDelete, "/api/profile?module=me", token, map[string]string{"confirm": "yes"})
	body := expect(t, rec, http.StatusBadRequest)
	if body["message"] != profile.ErrConfirmDelete.Error() {
		t.Errorf("got message %v", body["message"])
	}

	rec = e.do(t, http.MethodDelete, "/api/profile?module=me", token, map[string]string{"confirm": profile.DeleteConfirmation})
	expect(t, rec, http.StatusOK)

	expect(t, e.do(t, http.MethodGet, "/api/userinfo", token, nil), http.StatusUnauthorized)

	rec = e.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "player@club.test", "password": testPassword})
	expect(t, rec, http.StatusBadRequest)
}

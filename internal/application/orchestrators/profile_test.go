package orchestrators

import (
	"context"
	"errors"
	"testing"

	"clubhub/internal/domain/account"
	"clubhub/internal/domain/audit"
	"clubhub/internal/domain/profile"
	"clubhub/internal/domain/session"
	"clubhub/internal/domain/team"
)

func profileStore() *mockProfiles {
	return &mockProfiles{profiles: map[string]profile.Profile{
		"p1":     {Account: account.Account{ID: "p1", Email: "p1@club.test", Role: account.RolePlayer, Status: account.StatusActive}},
		"admin1": {Account: account.Account{ID: "admin1", Email: "a@club.test", Role: account.RoleAdmin, Status: account.StatusActive}},
	}}
}

func strPtr(s string) *string { return &s }

func TestExecuteUpdateProfile_Self(t *testing.T) {
	store := profileStore()
	rec := &mockAudit{}
	got, err := ExecuteUpdateProfile(context.Background(), UpdateProfileInput{
		ActorID:   "p1",
		ActorRole: account.RolePlayer,
		Patch: profile.Patch{
			User:    profile.UserPatch{PhoneNumber: strPtr("555-0101"), Password: strPtr("longerpass")},
			Details: map[string]any{"position": " Striker ", "playerHeight": float64(181)},
		},
	}, UpdateProfileDeps{ProfileStore: store, AuditStore: rec, Now: fixedNow})
	if err != nil {
		t.Fatalf("ExecuteUpdateProfile() error = %v", err)
	}
	if got.PhoneNumber != "555-0101" {
		t.Errorf("PhoneNumber = %q", got.PhoneNumber)
	}
	if got.Details["position"] != "Striker" || got.Details["playerHeight"] != float64(181) {
		t.Errorf("Details = %v", got.Details)
	}
	hash, _ := store.lastUser["pass"].(string)
	acct := account.Account{PasswordHash: hash}
	if err := acct.CheckPassword("longerpass"); err != nil {
		t.Error("password should be stored hashed")
	}
	if len(rec.actions) != 0 {
		t.Error("self edits are not audited")
	}
}

func TestExecuteUpdateProfile_AdminDeactivates(t *testing.T) {
	store := profileStore()
	sessions := newMockSessions(session.Session{ID: "s1", AccountID: "p1", IsActive: true})
	rec := &mockAudit{}
	_, err := ExecuteUpdateProfile(context.Background(), UpdateProfileInput{
		ActorID: "admin1", ActorRole: account.RoleAdmin, TargetID: "p1",
		Patch: profile.Patch{User: profile.UserPatch{Status: strPtr(account.StatusNotActive)}},
	}, UpdateProfileDeps{ProfileStore: store, SessionStore: sessions, AuditStore: rec, Now: fixedNow})
	if err != nil {
		t.Fatalf("ExecuteUpdateProfile() error = %v", err)
	}
	if store.profiles["p1"].Status != account.StatusNotActive {
		t.Error("status not updated")
	}
	if sessions.active("p1") != 0 {
		t.Error("sessions should end on deactivation")
	}
	if len(rec.actions) != 1 || rec.actions[0].ActionType != audit.ActionUpdateProfile || rec.actions[0].TargetID != "p1" {
		t.Errorf("audit = %+v", rec.actions)
	}
}

func TestExecuteUpdateProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   UpdateProfileInput
		wantErr error
	}{
		{"edit other", UpdateProfileInput{ActorID: "p1", ActorRole: account.RolePlayer, TargetID: "admin1",
			Patch: profile.Patch{User: profile.UserPatch{PhoneNumber: strPtr("1")}}}, ErrForbidden},
		{"self status", UpdateProfileInput{ActorID: "p1", ActorRole: account.RolePlayer,
			Patch: profile.Patch{User: profile.UserPatch{Status: strPtr(account.StatusActive)}}}, ErrForbidden},
		{"admin own status", UpdateProfileInput{ActorID: "admin1", ActorRole: account.RoleAdmin,
			Patch: profile.Patch{User: profile.UserPatch{Status: strPtr(account.StatusNotActive)}}}, ErrSelfStatusChange},
		{"admin own status by uid", UpdateProfileInput{ActorID: "admin1", ActorRole: account.RoleAdmin, TargetID: "admin1",
			Patch: profile.Patch{User: profile.UserPatch{Status: strPtr(account.StatusNotActive)}}}, ErrSelfStatusChange},
		{"unknown team", UpdateProfileInput{ActorID: "p1", ActorRole: account.RolePlayer,
			Patch: profile.Patch{Details: map[string]any{"teamID": "ghost"}}}, team.ErrNotFound},
		{"empty", UpdateProfileInput{ActorID: "p1", ActorRole: account.RolePlayer}, profile.ErrNoFields},
		{"unknown field", UpdateProfileInput{ActorID: "p1", ActorRole: account.RolePlayer,
			Patch: profile.Patch{Details: map[string]any{"salary": "lots", "position": "Keeper"}}}, profile.ErrUnknownField},
		{"only unknown fields", UpdateProfileInput{ActorID: "p1", ActorRole: account.RolePlayer,
			Patch: profile.Patch{Details: map[string]any{"salary": "lots"}}}, profile.ErrNoFields},
		{"bad email", UpdateProfileInput{ActorID: "p1", ActorRole: account.RolePlayer,
			Patch: profile.Patch{User: profile.UserPatch{Email: strPtr("no-at-sign")}}}, account.ErrInvalidEmail},
		{"missing target", UpdateProfileInput{ActorID: "admin1", ActorRole: account.RoleAdmin, TargetID: "ghost",
			Patch: profile.Patch{User: profile.UserPatch{PhoneNumber: strPtr("1")}}}, account.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := UpdateProfileDeps{ProfileStore: profileStore(), TeamStore: &mockTeams{}, Now: fixedNow}
			_, err := ExecuteUpdateProfile(context.Background(), tt.input, deps)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExecuteUpdateProfile_Team(t *testing.T) {
	store := profileStore()
	teams := &mockTeams{teams: map[string]team.Team{"t1": {ID: "t1"}}}
	deps := UpdateProfileDeps{ProfileStore: store, TeamStore: teams, Now: fixedNow}
	self := func(teamID string) UpdateProfileInput {
		return UpdateProfileInput{ActorID: "p1", ActorRole: account.RolePlayer,
			Patch: profile.Patch{Details: map[string]any{"teamID": teamID}}}
	}

	got, err := ExecuteUpdateProfile(context.Background(), self("t1"), deps)
	if err != nil {
		t.Fatalf("assign team error = %v", err)
	}
	if got.Details["teamID"] != "t1" {
		t.Errorf("teamID = %#v, want t1", got.Details["teamID"])
	}

	got, err = ExecuteUpdateProfile(context.Background(), self(""), deps)
	if err != nil {
		t.Fatalf("clear team error = %v", err)
	}
	if v, ok := got.Details["teamID"]; !ok || v != nil {
		t.Errorf("teamID = %#v, want nil", v)
	}
}

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clubhub/internal/adapters/http/perf"
	"clubhub/internal/adapters/storage/storagetest"
	"clubhub/internal/application/orchestrators"
	"clubhub/internal/domain/account"
)

const testPassword = "secret123"

// testEnv is a fully wired API over an in-memory database.
type testEnv struct {
	handler http.Handler
	stores  *Stores
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	RateLimitPerSecond = 10000
	LoginAttemptsPerMinute = 1000
	db := storagetest.OpenDB(t)
	s := NewSQLiteStores(db)
	h := NewMux(s, perf.NewCollector(256), Options{
		CSRFKey:   bytes.Repeat([]byte("k"), 32),
		JWTSecret: []byte("test-jwt-secret"),
	})
	t.Cleanup(Close)
	return &testEnv{handler: h, stores: s}
}

// createUser stores an Active account with testPassword and returns its uid.
func (e *testEnv) createUser(t *testing.T, name, email, role string) string {
	t.Helper()
	a, err := orchestrators.ExecuteCreateAccount(context.Background(), orchestrators.CreateAccountInput{
		FullName: name,
		Email:    email,
		Password: testPassword,
		Role:     role,
	}, orchestrators.CreateAccountDeps{
		AccountStore: e.stores.AccountStore,
		GenerateID:   generateID,
		Now:          time.Now,
	})
	if err != nil {
		t.Fatalf("failed to create %s: %v", email, err)
	}
	return a.ID
}

// login returns a bearer token for email.
func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: got status %d. Body: %s", email, rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %v", email, body)
	}
	return token
}

// userWithToken creates an account and logs it in.
func (e *testEnv) userWithToken(t *testing.T, name, email, role string) (string, string) {
	t.Helper()
	uid := e.createUser(t, name, email, role)
	return uid, e.login(t, email)
}

// do sends a JSON request. Non-GET requests always carry the JSON content type.
func (e *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

// expect checks the status code and envelope status, returning the decoded body.
func expect(t *testing.T, rec *httptest.ResponseRecorder, wantCode int) map[string]any {
	t.Helper()
	if rec.Code != wantCode {
		t.Fatalf("got status %d, want %d. Body: %s", rec.Code, wantCode, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	want := statusSuccess
	if wantCode >= 400 {
		want = statusError
	}
	if body["status"] != want {
		t.Errorf("got envelope status %v, want %q", body["status"], want)
	}
	return body
}

// seedClub creates one user per role used by the club tests.
type club struct {
	adminID, adminToken     string
	tmID, tmToken           string
	coachID, coachToken     string
	managerID, managerToken string
	playerID, playerToken   string
	otherID, otherToken     string
}

func seedClub(t *testing.T, e *testEnv) club {
	t.Helper()
	var c club
	c.adminID, c.adminToken = e.userWithToken(t, "Ada Admin", "admin@club.test", account.RoleAdmin)
	c.tmID, c.tmToken = e.userWithToken(t, "Tom Training", "tm@club.test", account.RoleTrainingManagement)
	c.coachID, c.coachToken = e.userWithToken(t, "Cora Coach", "coach@club.test", account.RoleCoach)
	c.managerID, c.managerToken = e.userWithToken(t, "Max Manager", "manager@club.test", account.RoleManager)
	c.playerID, c.playerToken = e.userWithToken(t, "Pia Player", "player@club.test", account.RolePlayer)
	c.otherID, c.otherToken = e.userWithToken(t, "Olly Other", "other@club.test", account.RolePlayer)
	return c
}

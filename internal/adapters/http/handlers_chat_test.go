package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"clubhub/internal/domain/chat"
)

func sendDirect(t *testing.T, e *testEnv, token, receiverID, text string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/chat?action=send-message", token, map[string]any{
		"receiverID": receiverID,
		"message":    text,
	})
	body := expect(t, rec, http.StatusCreated)
	id, _ := body["chatID"].(string)
	return id
}

func TestDirectChat(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)

	chatID := sendDirect(t, e, c.playerToken, c.coachID, "  Running late today  ")
	sendDirect(t, e, c.coachToken, c.playerID, "No problem")

	rec := e.do(t, http.MethodGet, "/api/chat?action=chat-history&otherUserID="+c.coachID, c.playerToken, nil)
	body := expect(t, rec, http.StatusOK)
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["message"] != "Running late today" {
		t.Errorf("expected trimmed body, got %q", first["message"])
	}

	rec = e.do(t, http.MethodGet, "/api/chat?action=direct-chats", c.coachToken, nil)
	body = expect(t, rec, http.StatusOK)
	if body["count"] != float64(1) {
		t.Errorf("got %v conversations, want 1", body["count"])
	}

	rec = e.do(t, http.MethodPost, "/api/chat?action=add-reaction", c.coachToken, map[string]any{"chatID": chatID, "emoji": "👍"})
	expect(t, rec, http.StatusOK)

	rec = e.do(t, http.MethodPost, "/api/chat?action=add-reaction", c.otherToken, map[string]any{"chatID": chatID, "emoji": "👍"})
	expect(t, rec, http.StatusNotFound)

	rec = e.do(t, http.MethodPost, "/api/chat?action=mark-seen", c.coachToken, map[string]any{"chatID": chatID})
	expect(t, rec, http.StatusOK)

	rec = e.do(t, http.MethodGet, "/api/chat?action=chat-history", c.playerToken, nil)
	expect(t, rec, http.StatusBadRequest)
}

func TestSendMessage_Validation(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{"no recipient", map[string]any{"message": "hi"}, http.StatusBadRequest},
		{"both recipients", map[string]any{"receiverID": c.coachID, "groupID": "g1", "message": "hi"}, http.StatusBadRequest},
		{"empty body", map[string]any{"receiverID": c.coachID, "message": "   "}, http.StatusBadRequest},
		{"to self", map[string]any{"receiverID": c.playerID, "message": "hi"}, http.StatusBadRequest},
		{"unknown receiver", map[string]any{"receiverID": "ghost", "message": "hi"}, http.StatusNotFound},
		{"unknown group", map[string]any{"groupID": "ghost", "message": "hi"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/api/chat?action=send-message", c.playerToken, tt.body)
			expect(t, rec, tt.wantStatus)
		})
	}
}

func TestGroupChat(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)

	rec := e.do(t, http.MethodPost, "/api/chat?action=create-group", c.coachToken, map[string]any{
		"groupName": "First XI",
		"memberIDs": []string{c.playerID},
	})
	body := expect(t, rec, http.StatusCreated)
	groupID, _ := body["groupID"].(string)

	rec = e.do(t, http.MethodGet, "/api/chat?action=group-members&groupID="+groupID, c.playerToken, nil)
	body = expect(t, rec, http.StatusOK)
	if body["count"] != float64(2) {
		t.Errorf("got %v members, want 2", body["count"])
	}

	rec = e.do(t, http.MethodPost, "/api/chat?action=send-message", c.otherToken, map[string]any{"groupID": groupID, "message": "hi"})
	expect(t, rec, http.StatusForbidden)

	rec = e.do(t, http.MethodPost, "/api/chat?action=add-member", c.playerToken, map[string]any{"groupID": groupID, "userID": c.otherID})
	expect(t, rec, http.StatusForbidden)

	rec = e.do(t, http.MethodPost, "/api/chat?action=add-member", c.coachToken, map[string]any{"groupID": groupID, "userID": c.otherID})
	expect(t, rec, http.StatusOK)

	rec = e.do(t, http.MethodPost, "/api/chat?action=add-member", c.coachToken, map[string]any{"groupID": groupID, "userID": c.otherID})
	expect(t, rec, http.StatusConflict)

	rec = e.do(t, http.MethodPost, "/api/chat?action=send-message", c.otherToken, map[string]any{"groupID": groupID, "message": "hello team"})
	expect(t, rec, http.StatusCreated)

	rec = e.do(t, http.MethodGet, "/api/chat?action=group-history&groupID="+groupID, c.playerToken, nil)
	body = expect(t, rec, http.StatusOK)
	if body["count"] != float64(1) {
		t.Errorf("got %v messages, want 1", body["count"])
	}

	// The only admin cannot leave.
	rec = e.do(t, http.MethodPost, "/api/chat?action=remove-member", c.coachToken, map[string]any{"groupID": groupID, "userID": c.coachID})
	expect(t, rec, http.StatusConflict)

	// Members may leave on their own.
	rec = e.do(t, http.MethodPost, "/api/chat?action=remove-member", c.otherToken, map[string]any{"groupID": groupID, "userID": c.otherID})
	expect(t, rec, http.StatusOK)

	rec = e.do(t, http.MethodGet, "/api/chat?action=user-groups", c.playerToken, nil)
	body = expect(t, rec, http.StatusOK)
	if body["count"] != float64(1) {
		t.Errorf("got %v groups, want 1", body["count"])
	}

	rec = e.do(t, http.MethodDelete, "/api/chat?action=delete-group&groupID="+groupID, c.playerToken, nil)
	expect(t, rec, http.StatusForbidden)

	rec = e.do(t, http.MethodDelete, "/api/chat?action=delete-group&groupID="+groupID, c.coachToken, nil)
	expect(t, rec, http.StatusOK)

	rec = e.do(t, http.MethodGet, "/api/chat?action=group-history&groupID="+groupID, c.playerToken, nil)
	expect(t, rec, http.StatusNotFound)
}

func TestGetSearchUsers(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)

	rec := e.do(t, http.MethodGet, "/api/chat?action=search-users&q=Player", c.playerToken, nil)
	body := expect(t, rec, http.StatusOK)
	if body["count"] != float64(0) {
		t.Errorf("caller must be excluded, got count %v", body["count"])
	}

	rec = e.do(t, http.MethodGet, "/api/chat?action=search-users&q=coach", c.playerToken, nil)
	body = expect(t, rec, http.StatusOK)
	if body["count"] != float64(1) {
		t.Errorf("got count %v, want 1", body["count"])
	}
}

func waitOnline(t *testing.T, uid string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Online(uid) != want {
		if time.Now().After(deadline) {
			t.Fatalf("uid %s has %d connections, want %d", uid, hub.Online(uid), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestChatSocket_ReceivesMessages(t *testing.T) {
	e := newTestEnv(t)
	c := seedClub(t, e)
	srv := httptest.NewServer(e.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat/ws"
	header := http.Header{"Authorization": []string{"Bearer " + c.coachToken}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	waitOnline(t, c.coachID, 1)

	chatID := sendDirect(t, e, c.playerToken, c.coachID, "Can I swap positions?")

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != "message" || ev.Payload.ID != chatID || ev.Payload.Body != "Can I swap positions?" {
		t.Errorf("unexpected event %+v", ev)
	}

	// Logging out everywhere drops the socket.
	expect(t, e.do(t, http.MethodPost, "/api/logout-all", c.coachToken, nil), http.StatusOK)
	waitOnline(t, c.coachID, 0)
}

func TestChatSocket_RequiresAuth(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.handler)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail without credentials")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", resp)
	}
}

func TestCheckOrigin(t *testing.T) {
	trustedOrigins = []string{"app.club.test"}
	t.Cleanup(func() { trustedOrigins = nil })

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://api.club.test", true},
		{"https://app.club.test", true},
		{"https://evil.test", false},
		{"://bad", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "http://api.club.test/api/chat/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := checkOrigin(r); got != tt.want {
			t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestHub_PublishSkipsOfflineUsers(t *testing.T) {
	h := NewHub()
	h.PublishMessage([]string{"nobody"}, chat.Message{ID: "c1"})
	if h.Online("nobody") != 0 {
		t.Error("expected no connections")
	}
	h.Close()
	if h.register(&client{hub: h, send: make(chan []byte, 1), userID: "late"}) {
		t.Error("closed hub must refuse new clients")
	}
}

func TestClose_StopsBackgroundWork(t *testing.T) {
	newTestEnv(t)
	if len(limiters) != 2 {
		t.Fatalf("got %d rate limiters, want 2", len(limiters))
	}

	Close()
	if limiters != nil {
		t.Error("limiters should be released after Close")
	}
	if hub.register(&client{hub: hub, send: make(chan []byte, 1), userID: "late"}) {
		t.Error("hub must refuse clients after Close")
	}
}

package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"clubhub/internal/domain/chat"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxInboundSize = 512
	sendBuffer     = 64
)

// trustedOrigins lists host:port pairs allowed to open a chat socket
// besides the request's own host (set by NewMux).
var trustedOrigins []string

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// checkOrigin accepts same-host origins and the configured trusted origins.
// Requests without an Origin header are not from a browser and are accepted.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host == r.Host {
		return true
	}
	for _, o := range trustedOrigins {
		if u.Host == o {
			return true
		}
	}
	return false
}

// Event is the frame pushed to chat clients.
type Event struct {
	Type    string       `json:"type"`
	Payload chat.Message `json:"payload"`
}

// client is one websocket connection of a user.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// Hub fans stored chat messages out to connected users.
// A user may hold several connections (tabs, devices).
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*client]struct{}
	closed  bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*client]struct{})}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	slog.Debug("chat_socket", "event", "connected", "uid", c.userID, "connections", len(set))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked drops c and closes its send channel once.
// PRE: h.mu is held
func (h *Hub) removeLocked(c *client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	slog.Debug("chat_socket", "event", "disconnected", "uid", c.userID)
}

// PublishMessage pushes m to every connection of recipients.
// Slow clients whose buffer is full are dropped rather than blocking the sender.
func (h *Hub) PublishMessage(recipients []string, m chat.Message) {
	frame, err := json.Marshal(Event{Type: "message", Payload: m})
	if err != nil {
		slog.Error("chat_publish_failed", "chat_id", m.ID, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[string]bool, len(recipients))
	for _, uid := range recipients {
		if seen[uid] {
			continue
		}
		seen[uid] = true
		for c := range h.clients[uid] {
			select {
			case c.send <- frame:
			default:
				slog.Warn("chat_socket", "event", "dropped_slow_client", "uid", uid)
				h.removeLocked(c)
			}
		}
	}
}

// Disconnect closes every connection of uid, e.g. after logout or deactivation.
func (h *Hub) Disconnect(uid string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[uid] {
		h.removeLocked(c)
	}
}

// Online returns the number of open connections for uid.
func (h *Hub) Online(uid string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[uid])
}

// Close disconnects everyone and refuses new connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}

// readPump discards inbound frames; it exists to process pongs and notice closes.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("chat_socket", "event", "unexpected_close", "uid", c.userID, "error", err)
			}
			return
		}
	}
}

// writePump sends queued frames and keepalive pings until send is closed.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				slog.Debug("chat_socket", "event", "write_failed", "uid", c.userID, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleChatSocket handles GET /api/chat/ws
// PRE: Caller is authenticated
// POST: Upgrades to a websocket that receives every message sent to the caller
func handleChatSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("chat_socket", "event", "upgrade_failed", "uid", sess.AccountID, "error", err)
		return
	}
	c := &client{hub: hub, conn: conn, send: make(chan []byte, sendBuffer), userID: sess.AccountID}
	if !hub.register(c) {
		conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

// internal/httpserver/ws.go
//
// WebSocket cue stream.
//
// Each live session owns a hub that fans cues (scratch, win, lose,
// complete) out to the player's connected tabs. The hub is the session's
// cue sink; connecting a socket counts as the first user gesture and
// initialises the session's cue player.

package httpserver

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/scratcher/internal/cue"
	"github.com/robalobadob/scratcher/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsMessage is every frame the server sends.
type wsMessage struct {
	Type string     `json:"type"` // "hello" | "cue"
	Cue  cue.Cue    `json:"cue,omitempty"`
	View *game.View `json:"view,omitempty"`
}

// clientMessage is every frame the server accepts.
type clientMessage struct {
	Type  string `json:"type"` // "mute"
	Muted *bool  `json:"muted,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan wsMessage
}

type hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*wsClient]struct{})}
}

// Play broadcasts c; slow clients drop cues rather than block the game.
func (h *hub) Play(c cue.Cue) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		select {
		case cl.send <- wsMessage{Type: "cue", Cue: c}:
		default:
		}
	}
}

func (h *hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

// handleWS upgrades GET /{token}/ws and streams the session's cues.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	player := s.playerID(w, r)
	l, err := s.sessions.get(r.Context(), player, token)
	if err != nil {
		s.writeGameError(w, token, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("token", token).Msg("websocket upgrade")
		return
	}
	if err := l.game.Cues().Init(); err != nil {
		log.Warn().Err(err).Str("token", token).Msg("cue init")
	}

	c := &wsClient{conn: conn, send: make(chan wsMessage, 16)}
	v := l.game.View()
	c.send <- wsMessage{Type: "hello", View: &v}
	l.hub.register(c)

	go c.writePump()
	c.readPump(l)
}

func (c *wsClient) readPump(l *liveSession) {
	defer func() {
		l.hub.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		l.touch()

		switch msg.Type {
		case "mute":
			if msg.Muted != nil {
				l.game.Cues().SetMuted(*msg.Muted)
			} else {
				l.game.Cues().ToggleMute()
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

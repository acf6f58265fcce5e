// internal/httpserver/sessions.go
//
// Live game sessions keyed by player and token.
//
// A session is opened on first use and kept in memory while the player is
// active; a reaper drops sessions idle longer than the session timeout and
// disconnects their WebSocket clients. Progress itself lives in the store,
// so an evicted session is rebuilt from it on the next request.

package httpserver

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/scratcher/internal/cue"
	"github.com/robalobadob/scratcher/internal/game"
	"github.com/robalobadob/scratcher/internal/progress"
)

// liveSession pairs a game session with its cue hub.
type liveSession struct {
	game *game.Session
	hub  *hub

	mu         sync.Mutex
	lastActive time.Time
}

func (l *liveSession) touch() {
	l.mu.Lock()
	l.lastActive = time.Now()
	l.mu.Unlock()
}

func (l *liveSession) idleSince() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastActive
}

type openFunc func(ctx context.Context, player, token string, h *hub) (*game.Session, error)

type sessionManager struct {
	mu          sync.Mutex
	sessions    map[string]*liveSession // player|token
	open        openFunc
	idleTimeout time.Duration
	done        chan struct{}
	closeOnce   sync.Once
}

func newSessionManager(idleTimeout time.Duration, open openFunc) *sessionManager {
	m := &sessionManager{
		sessions:    make(map[string]*liveSession),
		open:        open,
		idleTimeout: idleTimeout,
		done:        make(chan struct{}),
	}
	if idleTimeout > 0 {
		go m.reaperLoop()
	}
	return m
}

func sessionKey(player, token string) string { return player + "|" + token }

// get returns the player's session for token, opening it if needed.
// Invalid links are never cached.
func (m *sessionManager) get(ctx context.Context, player, token string) (*liveSession, error) {
	key := sessionKey(player, token)

	if l, ok := m.lookup(key); ok {
		return l, nil
	}

	// Opening reads the store, so it runs outside the lock; a session
	// opened concurrently for the same key wins.
	h := newHub()
	g, err := m.open(ctx, player, token, h)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.sessions[key]; ok {
		l.touch()
		return l, nil
	}
	l := &liveSession{game: g, hub: h, lastActive: time.Now()}
	m.sessions[key] = l
	return l, nil
}

func (m *sessionManager) lookup(key string) (*liveSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.sessions[key]
	if ok {
		l.touch()
	}
	return l, ok
}

func (m *sessionManager) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// reaperLoop periodically removes sessions idle longer than idleTimeout.
func (m *sessionManager) reaperLoop() {
	ticker := time.NewTicker(m.idleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.reap(time.Now().Add(-m.idleTimeout))
		}
	}
}

// reap drops sessions idle since before cutoff that have no live clients.
func (m *sessionManager) reap(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key, l := range m.sessions {
		if l.idleSince().Before(cutoff) && l.hub.clientCount() == 0 {
			delete(m.sessions, key)
			go l.hub.closeAll()
			n++
		}
	}
	if n > 0 {
		log.Debug().Int("sessions", n).Msg("reaped idle sessions")
	}
	return n
}

func (m *sessionManager) close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.mu.Lock()
		defer m.mu.Unlock()
		for key, l := range m.sessions {
			l.hub.closeAll()
			delete(m.sessions, key)
		}
	})
}

// openSession builds a game session whose cues go to h.
func (s *Server) openSession(ctx context.Context, player, token string, h *hub) (*game.Session, error) {
	return game.Open(ctx, token, game.Deps{
		Tracker: progress.NewTracker(s.opts.Store, player),
		Cards:   s.cards,
		Cues:    cue.NewPlayer(func() (cue.Sink, error) { return h, nil }),
		Config:  s.opts.Game,
	})
}

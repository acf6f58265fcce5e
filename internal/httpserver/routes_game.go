// internal/httpserver/routes_game.go
//
// HTTP routes for playing a link.
//   - GET  /{token}         → current view (opens or reuses the session)
//   - POST /{token}/cards   → deal a new card
//   - POST /{token}/scratch → clear a brush disc on one surface
//   - POST /{token}/flush   → coverage check at the end of a stroke
//   - POST /{token}/reset   → destroy progress (requires confirm:true)
//   - POST /{token}/mute    → mute, unmute or toggle cues
//
// Sessions are per player (see player.go) and held in memory; progress is
// persisted through the configured store.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/scratcher/internal/game"
)

func (s *Server) mountGame(r chi.Router) {
	r.Get("/{token}", s.handleView)
	r.Post("/{token}/cards", s.handleNewCard)
	r.Post("/{token}/scratch", s.handleScratch)
	r.Post("/{token}/flush", s.handleFlush)
	r.Post("/{token}/reset", s.handleReset)
	r.Post("/{token}/mute", s.handleMute)
}

type scratchReq struct {
	Surface int     `json:"surface"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Radius  float64 `json:"radius"` // optional; configured brush when zero
}

type flushReq struct {
	Surface int `json:"surface"`
}

type resetReq struct {
	Confirm bool `json:"confirm"`
}

type muteReq struct {
	Muted *bool `json:"muted"` // toggles when omitted
}

// session resolves the caller's session, writing the error response itself.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*liveSession, bool) {
	token := chi.URLParam(r, "token")
	l, err := s.sessions.get(r.Context(), s.playerID(w, r), token)
	if err != nil {
		s.writeGameError(w, token, err)
		return nil, false
	}
	return l, true
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	l, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, l.game.View())
}

func (s *Server) handleNewCard(w http.ResponseWriter, r *http.Request) {
	l, ok := s.session(w, r)
	if !ok {
		return
	}
	v, err := l.game.NewCard()
	if err != nil {
		s.writeGameError(w, l.game.Token(), err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleScratch(w http.ResponseWriter, r *http.Request) {
	var req scratchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	l, ok := s.session(w, r)
	if !ok {
		return
	}
	// First gesture on this session.
	_ = l.game.Cues().Init()

	res, err := l.game.Scratch(r.Context(), req.Surface, req.X, req.Y, req.Radius)
	if err != nil {
		s.writeGameError(w, l.game.Token(), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	var req flushReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	l, ok := s.session(w, r)
	if !ok {
		return
	}
	res, err := l.game.Flush(r.Context(), req.Surface)
	if err != nil {
		s.writeGameError(w, l.game.Token(), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if !req.Confirm {
		writeError(w, http.StatusBadRequest, "confirmation_required")
		return
	}
	l, ok := s.session(w, r)
	if !ok {
		return
	}
	log.Info().Str("token", l.game.Token()).Msg("progress reset")
	writeJSON(w, http.StatusOK, l.game.Reset(r.Context()))
}

func (s *Server) handleMute(w http.ResponseWriter, r *http.Request) {
	var req muteReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	l, ok := s.session(w, r)
	if !ok {
		return
	}
	if req.Muted == nil {
		writeJSON(w, http.StatusOK, l.game.ToggleMute())
		return
	}
	writeJSON(w, http.StatusOK, l.game.SetMuted(*req.Muted))
}

// writeGameError maps game errors onto status codes.
func (s *Server) writeGameError(w http.ResponseWriter, token string, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidLink):
		writeError(w, http.StatusBadRequest, "invalid_link")
	case errors.Is(err, game.ErrBadSurface):
		writeError(w, http.StatusBadRequest, "bad_surface")
	case errors.Is(err, game.ErrComplete):
		writeError(w, http.StatusConflict, "complete")
	case errors.Is(err, game.ErrNoCard):
		writeError(w, http.StatusConflict, "no_card")
	default:
		log.Error().Err(err).Str("token", token).Msg("game request failed")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

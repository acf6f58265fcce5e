// internal/httpserver/routes_links.go
//
// Link creation and sharing.
//   - POST /links       → encode a message into a token and shareable URL
//   - GET  /{token}/qr  → PNG QR code of the link

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/scratcher/internal/codec"
	"github.com/robalobadob/scratcher/internal/share"
	"github.com/robalobadob/scratcher/internal/words"
)

type createLinkReq struct {
	Message string `json:"message"`
}

type createLinkRes struct {
	Token string `json:"token"`
	Path  string `json:"path"`
	URL   string `json:"url"`
	Words int    `json:"words"`
}

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	msg := strings.TrimSpace(req.Message)
	if err := words.ValidateLink(msg, s.opts.Rules); err != nil {
		switch {
		case errors.Is(err, words.ErrEmpty):
			writeError(w, http.StatusBadRequest, "empty_message")
		case errors.Is(err, words.ErrTooFewWords):
			writeError(w, http.StatusBadRequest, "too_few_words")
		case errors.Is(err, words.ErrTooLong):
			writeError(w, http.StatusBadRequest, "too_long")
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	token, err := codec.Encode(msg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "empty_message")
		return
	}
	log.Info().Str("token", token).Msg("link created")
	writeJSON(w, http.StatusCreated, createLinkRes{
		Token: token,
		Path:  "/" + token,
		URL:   share.URL(s.baseURL(r), token),
		Words: codec.WordCount(token),
	})
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if !codec.IsValid(token) {
		writeError(w, http.StatusBadRequest, "invalid_link")
		return
	}
	png, err := share.QR(share.URL(s.baseURL(r), token), share.QRSize)
	if err != nil {
		log.Error().Err(err).Str("token", token).Msg("qr generation failed")
		writeError(w, http.StatusInternalServerError, "qr_failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (s *Server) baseURL(r *http.Request) string {
	if s.opts.BaseURL != "" {
		return s.opts.BaseURL
	}
	return share.BaseURL(r)
}

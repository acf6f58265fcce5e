// internal/httpserver/server.go
//
// HTTP server wiring for the scratcher backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", POST /links.
//   - Game endpoints under /{token}: view, new card, scratch, flush, reset,
//     mute, QR share code and the cue WebSocket.
//   - Anonymous player identity via a signed JWT cookie.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - The WebSocket route sits outside the request timeout.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/scratcher/internal/card"
	"github.com/robalobadob/scratcher/internal/game"
	"github.com/robalobadob/scratcher/internal/scratch"
	"github.com/robalobadob/scratcher/internal/store"
	"github.com/robalobadob/scratcher/internal/words"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultSessionTimeout = 60 * time.Minute
	defaultCookieName     = "scratcher_player"
	defaultCookieDays     = 180
	defaultClientOrigin   = "http://localhost:5173"
	devSecret             = "dev_secret_change_me"
)

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	Store store.Store
	Cards card.Config
	Game  game.Config
	Rules words.Rules

	BaseURL        string // public origin for share links; derived per request if empty
	ClientOrigin   string
	JWTSecret      string
	CookieName     string
	CookieDays     int
	SecureCookies  bool
	RequestTimeout time.Duration
	SessionTimeout time.Duration
}

// Server bundles router, progress store and live sessions.
type Server struct {
	r        *chi.Mux
	opts     Options
	cards    *card.Generator
	sessions *sessionManager
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("httpserver: store is required")
	}
	opts = opts.withDefaults()
	gen, err := card.NewGenerator(opts.Cards)
	if err != nil {
		return nil, err
	}

	s := &Server{r: chi.NewRouter(), opts: opts, cards: gen}
	s.sessions = newSessionManager(opts.SessionTimeout, s.openSession)

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(opts.RequestTimeout))

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"scratcher","endpoints":["/health","POST /links","/{token}","/{token}/qr","/{token}/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		r.Post("/links", s.handleCreateLink)
		r.Get("/{token}/qr", s.handleQR)
		s.mountGame(r)
	})

	// Long-lived; no request timeout.
	s.r.Get("/{token}/ws", s.handleWS)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s, nil
}

func (o Options) withDefaults() Options {
	if o.Cards == (card.Config{}) {
		o.Cards = card.DefaultConfig()
	}
	def := game.DefaultConfig()
	if o.Game.YourSurface == (scratch.Options{}) {
		o.Game.YourSurface = def.YourSurface
	}
	if o.Game.PrizeSurface == (scratch.Options{}) {
		o.Game.PrizeSurface = def.PrizeSurface
	}
	if o.Game.BrushRadius <= 0 {
		o.Game.BrushRadius = def.BrushRadius
	}
	if o.Game.HistorySize <= 0 {
		o.Game.HistorySize = def.HistorySize
	}
	if o.Rules == (words.Rules{}) {
		o.Rules = words.DefaultRules()
	}
	if o.ClientOrigin == "" {
		o.ClientOrigin = defaultClientOrigin
	}
	if o.JWTSecret == "" {
		log.Warn().Msg("no JWT secret configured; using the development secret")
		o.JWTSecret = devSecret
	}
	if o.CookieName == "" {
		o.CookieName = defaultCookieName
	}
	if o.CookieDays <= 0 {
		o.CookieDays = defaultCookieDays
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaultRequestTimeout
	}
	if o.SessionTimeout <= 0 {
		o.SessionTimeout = defaultSessionTimeout
	}
	return o
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: s.opts.RequestTimeout,
		IdleTimeout:       10 * time.Minute,
	}
	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	return srv.Shutdown(shutdownCtx)
}

// Close ends every live session and its WebSocket clients.
func (s *Server) Close() { s.sessions.close() }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

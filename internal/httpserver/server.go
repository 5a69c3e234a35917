// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the trivia backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/" (browser page), "/api", "/health".
//   - Session endpoints: mounted under /session (routes_session.go).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the session cookie works).
//   - Sessions are identified by a signed token (session.go); game state
//     itself lives in the store, never in the token.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/jeopardy/apps/go-server/assets"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/game"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/history"
	"github.com/robalobadob/jeopardy/apps/go-server/internal/store"
)

// Options configures a Server. History may be nil (journal disabled).
type Options struct {
	Store        store.Store
	Dealer       *game.Dealer
	History      *history.Store
	HistoryLimit int
	ClientOrigin string
	Secret       string
	CookieName   string
	SessionTTL   time.Duration
	Secure       bool // production cookies: Secure + SameSite=None
}

// Server bundles router, session store, dealer and journal.
type Server struct {
	r       *chi.Mux
	store   store.Store
	dealer  *game.Dealer
	history *history.Store
	opts    Options
	http    *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(o Options) *Server {
	if o.CookieName == "" {
		o.CookieName = "jeopardy_session"
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 24 * time.Hour
	}
	s := &Server{r: chi.NewRouter(), store: o.Store, dealer: o.Dealer, history: o.History, opts: o}
	s.http = &http.Server{Handler: s.r, ReadHeaderTimeout: 5 * time.Second}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(hlog.AccessHandler(accessLog))   // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(30 * time.Second)) // bound handler time (a deal is 4 fetches)
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{o.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- browser page ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(assets.IndexHTML())
	})

	s.r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		// --- diagnostics ---
		r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"jeopardy-go","endpoints":["/health","POST /session","GET /session","POST /session/tier","POST /session/points","POST /session/answer","POST /session/deal","GET /session/history"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		s.mountSession(r)

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found", "path": r.URL.Path})
		})
	})

	return s
}

// Start begins serving HTTP on addr and blocks until Shutdown.
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

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

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("req_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// internal/httpserver/server.go
//
// HTTP server wiring for the contexto backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, panic recovery, access log,
//     timeouts, JSON, CORS).
//   - Public endpoints: "/", "/health", "/categories", POST /session, /events.
//   - Player endpoints (token required): mounted under /game.
//   - Leaderboard endpoints: /leaderboard and the /leaderboard/live websocket.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the token cookie works).
//   - The websocket route sits outside the timeout group; a hijacked connection
//     must not be bounded by the handler timeout.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/contexto/internal/config"
	"github.com/robalobadob/contexto/internal/game"
	"github.com/robalobadob/contexto/internal/ranking"
	"github.com/robalobadob/contexto/internal/words"
)

// Leaderboard is the read side of the score mirror.
type Leaderboard interface {
	Top(ctx context.Context, limit int) ([]ranking.Entry, error)
	Subscribe() (<-chan []ranking.Entry, func())
}

// Deps are the collaborators a Server routes to.
type Deps struct {
	Config   *config.Config
	Dataset  *words.Dataset
	Sessions *game.Sessions
	Board    Leaderboard
}

// Server bundles the router and its collaborators.
type Server struct {
	r        *chi.Mux
	cfg      *config.Config
	dataset  *words.Dataset
	sessions *game.Sessions
	board    Leaderboard
	tokens   *tokenIssuer
	limiter  *ipLimiter
	http     *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		cfg:      d.Config,
		dataset:  d.Dataset,
		sessions: d.Sessions,
		board:    d.Board,
		tokens:   newTokenIssuer(d.Config.Auth),
		limiter:  newIPLimiter(d.Config.RateLimit.RPS, d.Config.RateLimit.Burst),
	}

	// --- middleware ---
	s.r.Use(requestID)                          // uuid X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(accessLog)                          // one zerolog line per request
	s.r.Use(cors(d.Config.Server.ClientOrigin)) // credentials-friendly CORS

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(d.Config.Server.HandlerTimeout)) // bound handler time
		r.Use(jsonContentType)                               // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"service":   "contexto-go",
				"endpoints": []string{"/health", "POST /session", "/game/*", "/categories", "/leaderboard", "/events"},
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})

		r.Get("/categories", s.handleCategories)
		r.Post("/session", s.handleSession)
		r.HandleFunc("/events", handleLogEvent)

		s.mountGame(r)
		r.Get("/leaderboard", s.handleLeaderboard)
	})

	s.r.Get("/leaderboard/live", s.handleLiveLeaderboard)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.r,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// handleCategories lists the dataset categories with their word counts.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	type category struct {
		Index int    `json:"index"`
		Name  string `json:"name"`
		Words int    `json:"words"`
	}
	out := make([]category, 0, s.dataset.Len())
	for i, c := range s.dataset.Categories() {
		out = append(out, category{Index: i, Name: c.Name, Words: len(c.Words)})
	}
	cats, total := s.dataset.Stats()
	writeJSON(w, http.StatusOK, map[string]any{"categories": out, "count": cats, "totalWords": total})
}

// ----------------------------- middleware ----------------------------------

// requestID tags every request with a uuid, reusing an inbound X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimw.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(chimw.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), chimw.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}

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

// ------------------------------- responses ---------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	body := map[string]string{"error": code}
	if message != "" {
		body["message"] = message
	}
	writeJSON(w, status, body)
}

// decodeJSON reads an optional JSON body into dst. An empty body is fine.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

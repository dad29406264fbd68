// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/muziki/internal/auth"
	"github.com/okian/muziki/internal/domain/model"
	"github.com/okian/muziki/pkg/logger"
)

// APIVersion is the path segment every business route lives under.
const APIVersion = "v1"

// SongService is the catalog behaviour the song handlers need.
type SongService interface {
	ListSongs(ctx context.Context) ([]model.Song, error)
	GetSong(ctx context.Context, id uint) (model.Song, error)
	CreateSong(ctx context.Context, title, artist string) (model.Song, error)
	UpdateSong(ctx context.Context, id uint, title, artist string) (model.Song, error)
	DeleteSong(ctx context.Context, id uint) error
}

// AuthService is the identity behaviour the auth handlers and middleware need.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password, email string) (model.User, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SongService
	AuthService
}

// Server wires HTTP routes for the business API.
type Server struct {
	log             logger.Logger
	authenticator   AuthService
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	songsHandler    *SongsHandler
	songHandler     *SongHandler
	loginHandler    *LoginHandler
	registerHandler *RegisterHandler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request-scoped error logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("api")
	}
	s.authenticator = deps
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.songsHandler = NewSongsHandler(deps, s.log)
	s.songHandler = NewSongHandler(deps, s.log)
	s.loginHandler = NewLoginHandler(deps, s.log)
	s.registerHandler = NewRegisterHandler(deps, s.log)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	s.route(mux, http.MethodGet, "/songs", "songs", s.requireAuth(s.songsHandler.HandleList))
	s.route(mux, http.MethodPost, "/songs", "songs", s.requireAuth(s.songsHandler.HandleCreate))

	s.route(mux, http.MethodGet, "/songs/{id}", "song", s.songHandler.HandleGet)
	s.route(mux, http.MethodPut, "/songs/{id}", "song", s.songHandler.HandleUpdate)
	s.route(mux, http.MethodDelete, "/songs/{id}", "song", s.songHandler.HandleDelete)

	s.route(mux, http.MethodPost, "/auth/login", "auth_login", s.loginHandler.HandleLogin)
	s.route(mux, http.MethodPost, "/auth/register", "auth_register", s.registerHandler.HandleRegister)
}

// route registers h under the version prefix with and without a trailing slash.
func (s *Server) route(mux *http.ServeMux, method, path, endpoint string, h http.HandlerFunc) {
	wrapped := RequestIDMiddleware(RecoverMiddleware(MetricsMiddleware(h, endpoint), s.log))
	full := "/" + APIVersion + path
	mux.HandleFunc(method+" "+full, wrapped)
	mux.HandleFunc(method+" "+full+"/{$}", wrapped)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {code, message}. The message is the client-facing text, never an internal error.
func writeError(w http.ResponseWriter, status int, code, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeInternal logs err with the request id and answers 500 without details.
func writeInternal(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	log.Error(r.Context(), "request failed",
		logger.String("op", op),
		logger.String("request_id", RequestIDFromContext(r.Context())),
		logger.Error(Wrap(op, err)),
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/vitrine/internal/adapters/session"
	service "github.com/okian/vitrine/internal/app"
	"github.com/okian/vitrine/internal/domain/chat"
	"github.com/okian/vitrine/internal/domain/lookup"
	"github.com/okian/vitrine/internal/domain/types"
	"github.com/okian/vitrine/pkg/logger"
)

const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	StatsProvider

	Session(ctx context.Context, id string) (*session.Session, bool, error)
	SessionTTL() time.Duration

	View(ctx context.Context, sess *session.Session) (types.View, error)
	SelectCategory(ctx context.Context, sess *session.Session, category string) (types.View, error)
	Step(ctx context.Context, sess *session.Session, direction int) (types.View, error)
	Jump(ctx context.Context, sess *session.Session, index int) (types.View, error)

	Chat(ctx context.Context, sess *session.Session, message, requestID string) (types.ChatResult, error)
	History(sess *session.Session) chat.History

	Tools() ([]lookup.Tool, error)
	RunTool(ctx context.Context, caller, name string, args lookup.Args) (string, error)

	Page(ctx context.Context) (types.Page, error)
}

// Server wires HTTP routes for the portfolio API.
type Server struct {
	deps   Dependencies
	log    logger.Logger
	health *HealthHandler
	stats  *StatsHandler
}

// NewServer creates a new API server. A nil logger discards output.
func NewServer(deps Dependencies, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		deps:   deps,
		log:    log,
		health: NewHealthHandler(),
		stats:  NewStatsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.stats.HandleStats, "stats"))

	mux.HandleFunc("GET /api/page", MetricsMiddleware(s.handlePage, "page"))
	mux.HandleFunc("GET /api/view", MetricsMiddleware(s.handleView, "view"))
	mux.HandleFunc("POST /api/nav/category", MetricsMiddleware(s.handleCategory, "nav_category"))
	mux.HandleFunc("POST /api/nav/step", MetricsMiddleware(s.handleStep, "nav_step"))
	mux.HandleFunc("POST /api/nav/jump", MetricsMiddleware(s.handleJump, "nav_jump"))

	mux.HandleFunc("POST /api/chat", MetricsMiddleware(s.handleChat, "chat"))
	mux.HandleFunc("GET /api/chat/history", MetricsMiddleware(s.handleHistory, "chat_history"))

	mux.HandleFunc("GET /api/tools", MetricsMiddleware(s.handleListTools, "tools"))
	mux.HandleFunc("POST /api/tools/{name}", MetricsMiddleware(s.handleRunTool, "tool_run"))
}

// session resolves the visitor's session from the cookie, issuing a new
// cookie when a session was created.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	sess, created, err := s.deps.Session(r.Context(), session.FromRequest(r))
	if err != nil {
		return nil, err
	}
	if created {
		session.SetCookie(w, sess.ID, s.deps.SessionTTL())
	}
	return sess, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail maps err onto a status and error code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, kind := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
		// Internal details stay in the log.
		writeError(w, status, code, NewKind(op, kind))
		return
	}
	writeError(w, status, code, WrapKind(op, kind, err))
}

func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrInvalidDirection),
		errors.Is(err, lookup.ErrInvalidArgument):
		return http.StatusBadRequest, "bad_request", ErrBadRequest
	case errors.Is(err, ErrRateLimited), errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited", ErrRateLimited
	case errors.Is(err, ErrNotFound), errors.Is(err, lookup.ErrUnknownTool):
		return http.StatusNotFound, "not_found", ErrNotFound
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable", ErrUnavailable
	default:
		return http.StatusInternalServerError, "internal", ErrInternal
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

// Package httpapi exposes the task store over a JSON HTTP API. It renders
// the abstract request contract (register, login, logout, task CRUD) into
// concrete routes and maps domain error kinds to status codes; it adds no
// invariants of its own.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/observability"
	"github.com/taskvault/taskvault/internal/task"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "taskvault_session"

// MinPasswordLength is the registration-form password rule. It lives here,
// not in the credential store: password strength is a caller concern.
const MinPasswordLength = 6

// Server handles the JSON API routes.
type Server struct {
	auth    *auth.Service
	tasks   *task.Service
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics wires request/login counters into the handlers.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a Server over the auth and task services.
func NewServer(authSvc *auth.Service, taskSvc *task.Service, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		auth:   authSvc,
		tasks:  taskSvc,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.instrument("register", s.handleRegister))
	mux.HandleFunc("POST /api/login", s.instrument("login", s.handleLogin))
	mux.HandleFunc("POST /api/logout", s.instrument("logout", s.handleLogout))

	mux.HandleFunc("GET /api/me", s.instrument("me", s.requireSession(s.handleMe)))
	mux.HandleFunc("GET /api/sessions", s.instrument("sessions_list", s.requireSession(s.handleListSessions)))

	mux.HandleFunc("GET /api/tasks", s.instrument("tasks_list", s.requireSession(s.handleListTasks)))
	mux.HandleFunc("POST /api/tasks", s.instrument("tasks_create", s.requireSession(s.handleCreateTask)))
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.instrument("tasks_toggle", s.requireSession(s.handleToggleTask)))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.instrument("tasks_delete", s.requireSession(s.handleDeleteTask)))

	return mux
}

// sessionContextKey is the context key type for the resolved session.
type sessionContextKey struct{}

// sessionFromContext returns the session placed by requireSession.
func sessionFromContext(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey{}).(*auth.Session)
	return session
}

// sessionToken extracts the token from the cookie or a bearer header.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const bearerPrefix = "Bearer "
	authz := r.Header.Get("Authorization")
	if len(authz) > len(bearerPrefix) && authz[:len(bearerPrefix)] == bearerPrefix {
		return authz[len(bearerPrefix):]
	}
	return ""
}

// requireSession resolves the session token and rejects unauthenticated
// requests. Every task route passes through here; handlers only ever see
// an owner that came from a resolved session.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.auth.Resolve(r.Context(), sessionToken(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey{}, session)
		next(w, r.WithContext(ctx))
	}
}

// instrument records a request counter per route and status.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	if s.metrics == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// setSessionCookie attaches the session token to the response.
func setSessionCookie(w http.ResponseWriter, token string, expiresAt *time.Time) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if expiresAt != nil {
		cookie.Expires = *expiresAt
	}
	http.SetCookie(w, cookie)
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskVault Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/taskvault/taskvault/internal/auth"
	"github.com/taskvault/taskvault/internal/task"
	"github.com/taskvault/taskvault/pkg/errutil"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type taskResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Completed   bool    `json:"completed"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionResponse struct {
	ID         string     `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSeenAt time.Time  `json:"last_seen_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Current    bool       `json:"current"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func toTaskResponse(t *task.Task) taskResponse {
	return taskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	// Form-layer password rule; the credential store only refuses empty.
	if len(req.Password) < MinPasswordLength {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: "password too short",
			Field: "password",
		})
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"id": user.ID.String()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, token, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if s.metrics != nil {
			s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		s.writeError(w, r, err)
		return
	}
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}

	setSessionCookie(w, token, session.ExpiresAt)
	s.writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Logout is idempotent: an absent or already-ended session is fine.
	if err := s.auth.Logout(r.Context(), sessionToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	// Serve the account record, not the session's denormalized username.
	user, err := s.auth.User(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, userResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	sessions, err := s.auth.Sessions(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		resp = append(resp, sessionResponse{
			ID:         sess.ID.String(),
			CreatedAt:  sess.CreatedAt,
			LastSeenAt: sess.LastSeenAt,
			ExpiresAt:  sess.ExpiresAt,
			Current:    sess.ID == session.ID,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	tasks, err := s.tasks.List(r.Context(), session.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	t, err := s.tasks.Create(r.Context(), session.UserID, req.Title, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toTaskResponse(t))
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	taskID, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		// Unparseable ids look the same as missing tasks.
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "task not found"})
		return
	}

	t, err := s.tasks.ToggleCompletion(r.Context(), session.UserID, taskID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toTaskResponse(t))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	taskID, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		// Permissive delete: nothing to remove is still success.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := s.tasks.Delete(r.Context(), session.UserID, taskID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain error kinds to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *task.ValidationError
	if errors.As(err, &vErr) {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: vErr.Message,
			Field: vErr.Field,
		})
		return
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		switch oopsErr.Code() {
		case "AUTH_DUPLICATE_USERNAME":
			s.writeJSON(w, http.StatusConflict, errorResponse{Error: "username already exists"})
			return
		case "AUTH_INVALID_USERNAME":
			s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid username", Field: "username"})
			return
		case "AUTH_INVALID_CREDENTIALS":
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid username or password"})
			return
		case "SESSION_INVALID", "SESSION_EXPIRED":
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
			return
		case "TASK_NOT_FOUND":
			s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "task not found"})
			return
		}
	}

	if errors.Is(err, auth.ErrDuplicateUsername) {
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: "username already exists"})
		return
	}

	errutil.LogError(s.logger.With("method", r.Method, "path", r.URL.Path), "request failed", err)
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

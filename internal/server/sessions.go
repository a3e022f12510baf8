package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tubio/internal/session"
)

type sessionCreateRequest struct {
	Config   json.RawMessage `json:"config"`
	Password string          `json:"password"`
}

type sessionUpdateRequest struct {
	Config   json.RawMessage `json:"config"`
	Password string          `json:"password"`
}

type sessionResponse struct {
	ID           string          `json:"sessionId"`
	Config       json.RawMessage `json:"config,omitempty"`
	CreatedAt    time.Time       `json:"createdAt,omitempty"`
	LastAccessed time.Time       `json:"lastAccessed,omitempty"`
	ExpiresAt    time.Time       `json:"expiresAt,omitempty"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotImplemented, "sessions disabled")
		return
	}
	var req sessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Config) == 0 {
		s.writeError(w, http.StatusBadRequest, "config required")
		return
	}
	id, err := s.store.Create(r.Context(), string(req.Config), req.Password)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "create session")
		return
	}
	s.writeJSON(w, http.StatusCreated, sessionResponse{ID: id})
}

func (s *Server) handleSessionRead(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotImplemented, "sessions disabled")
		return
	}
	id := chi.URLParam(r, "id")
	sess, err := s.store.Read(r.Context(), id, r.URL.Query().Get("password"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{
		ID:           sess.ID,
		Config:       json.RawMessage(sess.Config),
		CreatedAt:    sess.CreatedAt,
		LastAccessed: sess.LastAccessed,
		ExpiresAt:    sess.ExpiresAt,
	})
}

func (s *Server) handleSessionUpdate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotImplemented, "sessions disabled")
		return
	}
	var req sessionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Config) == 0 {
		s.writeError(w, http.StatusBadRequest, "config required")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.store.Update(r.Context(), id, req.Password, string(req.Config)); err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{ID: id})
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotImplemented, "sessions disabled")
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id, r.URL.Query().Get("password")); err != nil {
		s.writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeSessionError maps store errors to the protocol: expired is a
// distinct 410 signal, everything else that is caller-visible is 404.
func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrExpired):
		s.writeError(w, http.StatusGone, "session expired")
	case errors.Is(err, session.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "session not found")
	default:
		s.writeError(w, http.StatusInternalServerError, "session store error")
	}
}

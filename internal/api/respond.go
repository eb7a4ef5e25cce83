package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bioedge/outreach/internal/generator"
	"github.com/bioedge/outreach/internal/repository"
)

// ErrorResponse is the error body for every failed request. Code is stable
// and machine-readable; Error is for humans.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	s.sendJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondError maps domain errors onto HTTP statuses. Unrecognized errors
// are logged and reported as a plain 500 without leaking details.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.sendError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, repository.ErrImmutable):
		s.sendError(w, http.StatusConflict, "immutable", err.Error())
	case errors.Is(err, repository.ErrInvalidTransition):
		s.sendError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, repository.ErrConflict):
		s.sendError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, generator.ErrNotConfigured):
		s.sendError(w, http.StatusServiceUnavailable, "not_configured", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bioedge/outreach/internal/models"
)

// handleCreateSender handles POST /api/v1/senders
func (s *Server) handleCreateSender(w http.ResponseWriter, r *http.Request) {
	var p models.SenderProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.sendError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if err := p.Validate(); err != nil {
		s.sendError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	if err := s.senders.Create(&p); err != nil {
		s.respondError(w, err)
		return
	}
	s.sendJSON(w, http.StatusCreated, p)
}

// handleListSenders handles GET /api/v1/senders
func (s *Server) handleListSenders(w http.ResponseWriter, r *http.Request) {
	items, err := s.senders.List()
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, ListResponse{Items: items, Total: len(items)})
}

// handleGetSender handles GET /api/v1/senders/{id}
func (s *Server) handleGetSender(w http.ResponseWriter, r *http.Request) {
	p, err := s.senders.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	if p == nil {
		s.sendError(w, http.StatusNotFound, "not_found", "sender profile not found")
		return
	}
	s.sendJSON(w, http.StatusOK, p)
}

// handleUpdateSender handles PUT /api/v1/senders/{id}
func (s *Server) handleUpdateSender(w http.ResponseWriter, r *http.Request) {
	var p models.SenderProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.sendError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := p.Validate(); err != nil {
		s.sendError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	if err := s.senders.Update(&p); err != nil {
		s.respondError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, p)
}

// handleDeleteSender handles DELETE /api/v1/senders/{id}
func (s *Server) handleDeleteSender(w http.ResponseWriter, r *http.Request) {
	if err := s.senders.Delete(chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

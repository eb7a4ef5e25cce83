package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bioedge/outreach/internal/models"
)

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleUpsertContact handles POST /api/v1/contacts. Upsert semantics: the
// email address is the identity.
func (s *Server) handleUpsertContact(w http.ResponseWriter, r *http.Request) {
	var c models.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.sendError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if strings.TrimSpace(c.Email) == "" {
		s.sendError(w, http.StatusBadRequest, "validation", "email is required")
		return
	}

	if err := s.contacts.Upsert(&c); err != nil {
		s.respondError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, c)
}

// handleListContacts handles GET /api/v1/contacts
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	filter := models.ContactFilter{
		Search:       r.URL.Query().Get("search"),
		BusinessType: r.URL.Query().Get("business_type"),
		Verification: r.URL.Query().Get("verification"),
		Limit:        queryInt(r, "limit", 100),
		Offset:       queryInt(r, "offset", 0),
	}

	items, total, err := s.contacts.List(filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, ListResponse{Items: items, Total: total})
}

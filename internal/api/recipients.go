package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bioedge/outreach/internal/models"
)

// AddRecipientsRequest is the body for POST /campaigns/{id}/recipients.
type AddRecipientsRequest struct {
	Contacts []models.Contact `json:"contacts"`
}

// RecipientActionRequest is the body for PATCH /recipients/{id} and
// PATCH /campaigns/{id}/recipients.
type RecipientActionRequest struct {
	Action  string `json:"action"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}

// handleAddRecipients handles POST /api/v1/campaigns/{id}/recipients.
// Contacts already present in the campaign are silently skipped; the
// response reports how many rows were actually created.
func (s *Server) handleAddRecipients(w http.ResponseWriter, r *http.Request) {
	c, err := s.getCampaign(w, r)
	if c == nil || err != nil {
		return
	}

	var req AddRecipientsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if len(req.Contacts) == 0 {
		s.sendError(w, http.StatusBadRequest, "validation", "contacts is required")
		return
	}

	created, err := s.recipients.CreateFromContacts(c.ID, req.Contacts)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.Info("recipients added", "campaign_id", c.ID, "created", created, "submitted", len(req.Contacts))
	s.sendJSON(w, http.StatusCreated, map[string]int{"created": created})
}

// handleListRecipients handles GET /api/v1/campaigns/{id}/recipients
func (s *Server) handleListRecipients(w http.ResponseWriter, r *http.Request) {
	c, err := s.getCampaign(w, r)
	if c == nil || err != nil {
		return
	}

	filter := models.RecipientFilter{
		CampaignID: c.ID,
		Status:     r.URL.Query().Get("status"),
		Limit:      queryInt(r, "limit", 100),
		Offset:     queryInt(r, "offset", 0),
	}

	items, total, err := s.recipients.List(filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, ListResponse{Items: items, Total: total})
}

// handleBulkRecipients handles PATCH /api/v1/campaigns/{id}/recipients
func (s *Server) handleBulkRecipients(w http.ResponseWriter, r *http.Request) {
	c, err := s.getCampaign(w, r)
	if c == nil || err != nil {
		return
	}

	var req RecipientActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	switch req.Action {
	case "approve_all":
		n, err := s.recipients.ApproveAll(c.ID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.metrics.ReviewActionsTotal.WithLabelValues("approve_all").Inc()
		s.logger.Info("recipients approved in bulk", "campaign_id", c.ID, "approved", n)
		s.sendJSON(w, http.StatusOK, map[string]int{"approved": n})
	default:
		s.sendError(w, http.StatusBadRequest, "validation", "unknown action: "+req.Action)
	}
}

// handleRecipientAction handles PATCH /api/v1/recipients/{id}
func (s *Server) handleRecipientAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RecipientActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}

	var err error
	switch req.Action {
	case "update":
		err = s.recipients.UpdateContent(id, req.Subject, req.Body)
	case "approve":
		err = s.recipients.Transition(id, models.RecipientGenerated, models.RecipientApproved)
	case "delete":
		err = s.recipients.Transition(id, models.RecipientGenerated, models.RecipientDeleted)
	case "regenerate":
		// Synchronous: the caller is sitting in the review flow waiting for
		// the fresh draft.
		err = s.gen.Regenerate(r.Context(), id, models.RecipientGenerated)
	case "retry":
		err = s.gen.Regenerate(r.Context(), id, models.RecipientFailed)
	default:
		s.sendError(w, http.StatusBadRequest, "validation", "unknown action: "+req.Action)
		return
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.metrics.ReviewActionsTotal.WithLabelValues(req.Action).Inc()

	rec, err := s.recipients.GetByID(id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if rec == nil {
		s.sendError(w, http.StatusNotFound, "not_found", "recipient not found")
		return
	}
	s.sendJSON(w, http.StatusOK, rec)
}

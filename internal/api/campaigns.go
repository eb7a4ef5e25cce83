package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bioedge/outreach/internal/models"
)

// ListResponse wraps a page of results with the unfiltered total.
type ListResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

// handleCreateCampaign handles POST /api/v1/campaigns
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var c models.Campaign
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		s.sendError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	if c.Name == "" {
		s.sendError(w, http.StatusBadRequest, "validation", "name is required")
		return
	}
	if c.Purpose == "" {
		s.sendError(w, http.StatusBadRequest, "validation", "purpose is required")
		return
	}

	if err := s.campaigns.Create(&c); err != nil {
		s.respondError(w, err)
		return
	}

	s.logger.Info("campaign created", "id", c.ID, "name", c.Name)
	s.sendJSON(w, http.StatusCreated, c)
}

// handleListCampaigns handles GET /api/v1/campaigns
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	filter := models.CampaignListFilter{
		Search: r.URL.Query().Get("search"),
		Status: r.URL.Query().Get("status"),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}

	items, total, err := s.campaigns.List(filter)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, ListResponse{Items: items, Total: total})
}

// handleGetCampaign handles GET /api/v1/campaigns/{id}. The response always
// carries freshly derived recipient counters.
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.getCampaign(w, r)
	if c == nil || err != nil {
		return
	}

	stats, err := s.campaigns.Stats(c.ID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, models.CampaignWithStats{Campaign: *c, Stats: stats})
}

// handleUpdateCampaign handles PUT /api/v1/campaigns/{id}. Only
// configuration fields change here; status moves through the action
// endpoints.
func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.getCampaign(w, r)
	if c == nil || err != nil {
		return
	}

	var in models.Campaign
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.sendError(w, http.StatusBadRequest, "validation", "invalid request body")
		return
	}
	in.ID = c.ID
	in.Status = c.Status
	in.CreatedAt = c.CreatedAt
	if in.Name == "" {
		in.Name = c.Name
	}

	if err := s.campaigns.Update(&in); err != nil {
		s.respondError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, in)
}

// handleDeleteCampaign handles DELETE /api/v1/campaigns/{id}
func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.campaigns.Delete(id); err != nil {
		s.respondError(w, err)
		return
	}
	s.logger.Info("campaign deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleGenerateCampaign handles POST /api/v1/campaigns/{id}/generate.
// It only flips the campaign to generating; the background worker does the
// actual work.
func (s *Server) handleGenerateCampaign(w http.ResponseWriter, r *http.Request) {
	c := s.transitionCampaign(w, r, models.CampaignGenerating)
	if c == nil {
		return
	}
	s.logger.Info("campaign queued for generation", "id", c.ID)
	s.sendJSON(w, http.StatusAccepted, map[string]string{
		"id":     c.ID,
		"status": models.CampaignGenerating,
	})
}

// handleSendCampaign handles POST /api/v1/campaigns/{id}/send. This marks
// the handoff of approved drafts to the delivery system; nothing is
// dispatched from here.
func (s *Server) handleSendCampaign(w http.ResponseWriter, r *http.Request) {
	s.campaignAction(w, r, models.CampaignSending)
}

// handlePauseCampaign handles POST /api/v1/campaigns/{id}/pause
func (s *Server) handlePauseCampaign(w http.ResponseWriter, r *http.Request) {
	s.campaignAction(w, r, models.CampaignPaused)
}

// handleResumeCampaign handles POST /api/v1/campaigns/{id}/resume
func (s *Server) handleResumeCampaign(w http.ResponseWriter, r *http.Request) {
	s.campaignAction(w, r, models.CampaignSending)
}

// handleCompleteCampaign handles POST /api/v1/campaigns/{id}/complete
func (s *Server) handleCompleteCampaign(w http.ResponseWriter, r *http.Request) {
	s.campaignAction(w, r, models.CampaignCompleted)
}

func (s *Server) campaignAction(w http.ResponseWriter, r *http.Request, to string) {
	c := s.transitionCampaign(w, r, to)
	if c == nil {
		return
	}
	s.logger.Info("campaign status changed", "id", c.ID, "from", c.Status, "to", to)
	s.sendJSON(w, http.StatusOK, map[string]string{"id": c.ID, "status": to})
}

// transitionCampaign loads the campaign and applies a guarded status change.
// Returns nil after writing the error response when anything fails.
func (s *Server) transitionCampaign(w http.ResponseWriter, r *http.Request, to string) *models.Campaign {
	c, err := s.getCampaign(w, r)
	if c == nil || err != nil {
		return nil
	}
	if err := s.campaigns.UpdateStatus(c.ID, c.Status, to); err != nil {
		s.respondError(w, err)
		return nil
	}
	return c
}

// getCampaign loads the campaign from the URL, writing 404 when absent.
func (s *Server) getCampaign(w http.ResponseWriter, r *http.Request) (*models.Campaign, error) {
	id := chi.URLParam(r, "id")
	c, err := s.campaigns.GetByID(id)
	if err != nil {
		s.respondError(w, err)
		return nil, err
	}
	if c == nil {
		s.sendError(w, http.StatusNotFound, "not_found", "campaign not found")
		return nil, nil
	}
	return c, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

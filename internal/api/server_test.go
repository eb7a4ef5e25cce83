package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bioedge/outreach/internal/config"
	"github.com/bioedge/outreach/internal/db"
	"github.com/bioedge/outreach/internal/generator"
	"github.com/bioedge/outreach/internal/metrics"
	"github.com/bioedge/outreach/internal/models"
	"github.com/bioedge/outreach/internal/repository"
)

type stubLLM struct{}

func (stubLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return `{"subject": "Fresh subject", "body": "Fresh body"}`, nil
}

type testEnv struct {
	server     *Server
	campaigns  *repository.CampaignRepository
	recipients *repository.RecipientRepository
	contacts   *repository.ContactRepository
}

func setupTestServer(t *testing.T, apiKey string) *testEnv {
	t.Helper()

	raw, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { raw.Close() })
	if _, err := raw.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatal(err)
	}
	d := &db.DB{DB: raw}
	if err := d.Migrate(); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	campaigns := repository.NewCampaignRepository(raw)
	recipients := repository.NewRecipientRepository(raw)
	senders := repository.NewSenderProfileRepository(raw)
	contacts := repository.NewContactRepository(raw)
	gen := generator.New(stubLLM{}, campaigns, recipients, senders, m, logger, time.Millisecond)

	cfg := &config.ServerConfig{ListenAddr: ":8080", APIKey: apiKey}
	server := NewServer(cfg, campaigns, recipients, senders, contacts, gen, m, logger)
	return &testEnv{server: server, campaigns: campaigns, recipients: recipients, contacts: contacts}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.server.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createCampaign(t *testing.T) models.Campaign {
	t.Helper()
	w := e.do(t, "POST", "/api/v1/campaigns", `{"name": "Fall outreach", "purpose": "Invite local clinics"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create campaign: status = %d, body: %s", w.Code, w.Body.String())
	}
	var c models.Campaign
	if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
		t.Fatal(err)
	}
	return c
}

func (e *testEnv) addRecipients(t *testing.T, campaignID string, n int) {
	t.Helper()
	contacts := make([]models.Contact, n)
	for i := range contacts {
		contacts[i] = models.Contact{Email: fmt.Sprintf("r%d@example.com", i), BusinessType: "Chiropractor"}
	}
	payload, _ := json.Marshal(AddRecipientsRequest{Contacts: contacts})
	w := e.do(t, "POST", "/api/v1/campaigns/"+campaignID+"/recipients", string(payload))
	if w.Code != http.StatusCreated {
		t.Fatalf("add recipients: status = %d, body: %s", w.Code, w.Body.String())
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&e); err != nil {
		t.Fatalf("failed to decode error body %q: %v", w.Body.String(), err)
	}
	return e
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestServer(t, "")

	w := env.do(t, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestAuthRequired(t *testing.T) {
	env := setupTestServer(t, "secret-key")

	w := env.do(t, "GET", "/api/v1/campaigns", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/campaigns", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	env.server.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with key: status = %d, want 200", rec.Code)
	}

	// X-API-Key works too
	req = httptest.NewRequest("GET", "/api/v1/campaigns", nil)
	req.Header.Set("X-API-Key", "secret-key")
	rec = httptest.NewRecorder()
	env.server.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with X-API-Key: status = %d, want 200", rec.Code)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	env := setupTestServer(t, "")

	w := env.do(t, "POST", "/api/v1/campaigns", `{"purpose": "no name"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if e := decodeError(t, w); e.Code != "validation" {
		t.Errorf("code = %q, want validation", e.Code)
	}
}

func TestGetCampaignIncludesStats(t *testing.T) {
	env := setupTestServer(t, "")
	c := env.createCampaign(t)
	env.addRecipients(t, c.ID, 3)

	w := env.do(t, "GET", "/api/v1/campaigns/"+c.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var resp models.CampaignWithStats
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != models.CampaignDraft {
		t.Errorf("status = %q, want draft", resp.Status)
	}
	if resp.Stats.Recipients != 3 || resp.Stats.Pending != 3 {
		t.Errorf("stats = %+v, want 3 pending recipients", resp.Stats)
	}
}

func TestGetCampaignNotFound(t *testing.T) {
	env := setupTestServer(t, "")

	w := env.do(t, "GET", "/api/v1/campaigns/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if e := decodeError(t, w); e.Code != "not_found" {
		t.Errorf("code = %q, want not_found", e.Code)
	}
}

func TestDeleteNonDraftCampaignRejected(t *testing.T) {
	env := setupTestServer(t, "")
	c := env.createCampaign(t)

	w := env.do(t, "POST", "/api/v1/campaigns/"+c.ID+"/generate", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("generate: status = %d, body: %s", w.Code, w.Body.String())
	}

	w = env.do(t, "DELETE", "/api/v1/campaigns/"+c.ID, "")
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if e := decodeError(t, w); e.Code != "conflict" {
		t.Errorf("code = %q, want conflict", e.Code)
	}
}

func TestDeleteDraftCampaign(t *testing.T) {
	env := setupTestServer(t, "")
	c := env.createCampaign(t)

	w := env.do(t, "DELETE", "/api/v1/campaigns/"+c.ID, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func TestInvalidCampaignTransition(t *testing.T) {
	env := setupTestServer(t, "")
	c := env.createCampaign(t)

	// draft -> paused is not a legal move
	w := env.do(t, "POST", "/api/v1/campaigns/"+c.ID+"/pause", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body: %s", w.Code, w.Body.String())
	}
	if e := decodeError(t, w); e.Code != "invalid_transition" {
		t.Errorf("code = %q, want invalid_transition", e.Code)
	}
}

func TestRecipientListFilter(t *testing.T) {
	env := setupTestServer(t, "")
	c := env.createCampaign(t)
	env.addRecipients(t, c.ID, 2)

	w := env.do(t, "GET", "/api/v1/campaigns/"+c.ID+"/recipients?status=pending", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Items []models.Recipient `json:"items"`
		Total int                `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Errorf("total = %d, items = %d, want 2/2", resp.Total, len(resp.Items))
	}

	w = env.do(t, "GET", "/api/v1/campaigns/"+c.ID+"/recipients?status=generated", "")
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 0 {
		t.Errorf("generated total = %d, want 0", resp.Total)
	}
}

// reviewFixture drives one recipient to generated through the repositories.
func reviewFixture(t *testing.T, env *testEnv) (models.Campaign, models.Recipient) {
	t.Helper()
	c := env.createCampaign(t)
	env.addRecipients(t, c.ID, 1)

	recs, _, err := env.recipients.List(models.RecipientFilter{CampaignID: c.ID})
	if err != nil {
		t.Fatal(err)
	}
	rec := recs[0]
	if err := env.recipients.Transition(rec.ID, models.RecipientPending, models.RecipientGenerating); err != nil {
		t.Fatal(err)
	}
	if err := env.recipients.SetGenerated(rec.ID, "Draft subject", "Draft body"); err != nil {
		t.Fatal(err)
	}
	return c, rec
}

func TestRecipientUpdateAndApprove(t *testing.T) {
	env := setupTestServer(t, "")
	_, rec := reviewFixture(t, env)

	w := env.do(t, "PATCH", "/api/v1/recipients/"+rec.ID,
		`{"action": "update", "subject": "Edited", "body": "Edited body"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body: %s", w.Code, w.Body.String())
	}

	w = env.do(t, "PATCH", "/api/v1/recipients/"+rec.ID, `{"action": "approve"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("approve: status = %d, body: %s", w.Code, w.Body.String())
	}

	var got models.Recipient
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != models.RecipientApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}
	if got.Subject != "Edited" {
		t.Errorf("subject = %q, want edit preserved", got.Subject)
	}
}

func TestRecipientDoubleApproveConflict(t *testing.T) {
	env := setupTestServer(t, "")
	_, rec := reviewFixture(t, env)

	if w := env.do(t, "PATCH", "/api/v1/recipients/"+rec.ID, `{"action": "approve"}`); w.Code != http.StatusOK {
		t.Fatalf("first approve: status = %d", w.Code)
	}

	w := env.do(t, "PATCH", "/api/v1/recipients/"+rec.ID, `{"action": "approve"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("second approve: status = %d, want 409", w.Code)
	}
	if e := decodeError(t, w); e.Code != "conflict" {
		t.Errorf("code = %q, want conflict", e.Code)
	}
}

func TestRecipientRegenerate(t *testing.T) {
	env := setupTestServer(t, "")
	_, rec := reviewFixture(t, env)

	w := env.do(t, "PATCH", "/api/v1/recipients/"+rec.ID, `{"action": "regenerate"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}

	var got models.Recipient
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != models.RecipientGenerated {
		t.Errorf("status = %q, want generated", got.Status)
	}
	if got.Subject != "Fresh subject" {
		t.Errorf("subject = %q, want regenerated content", got.Subject)
	}
}

func TestRecipientUnknownAction(t *testing.T) {
	env := setupTestServer(t, "")
	_, rec := reviewFixture(t, env)

	w := env.do(t, "PATCH", "/api/v1/recipients/"+rec.ID, `{"action": "explode"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestApproveAll(t *testing.T) {
	env := setupTestServer(t, "")
	c, _ := reviewFixture(t, env)

	w := env.do(t, "PATCH", "/api/v1/campaigns/"+c.ID+"/recipients", `{"action": "approve_all"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	var resp map[string]int
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp["approved"] != 1 {
		t.Errorf("approved = %d, want 1", resp["approved"])
	}
}

func TestSenderCRUD(t *testing.T) {
	env := setupTestServer(t, "")

	w := env.do(t, "POST", "/api/v1/senders", `{"name": "Dana Reyes", "email": "dana@example.com", "title": "Partnerships Lead"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body: %s", w.Code, w.Body.String())
	}
	var p models.SenderProfile
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.Signature == "" {
		t.Error("signature was not autogenerated")
	}

	w = env.do(t, "GET", "/api/v1/senders/"+p.ID, "")
	if w.Code != http.StatusOK {
		t.Errorf("get: status = %d", w.Code)
	}

	w = env.do(t, "POST", "/api/v1/senders", `{"name": "No Email"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid sender: status = %d, want 400", w.Code)
	}

	w = env.do(t, "DELETE", "/api/v1/senders/"+p.ID, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("delete: status = %d, want 204", w.Code)
	}
}

func TestContactUpsertAndList(t *testing.T) {
	env := setupTestServer(t, "")

	w := env.do(t, "POST", "/api/v1/contacts", `{"email": "doc@spinealign.com", "business_type": "Chiropractor", "verification": "valid"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("upsert: status = %d, body: %s", w.Code, w.Body.String())
	}

	// Same email again updates rather than duplicating.
	w = env.do(t, "POST", "/api/v1/contacts", `{"email": "doc@spinealign.com", "business_type": "Med Spa"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("second upsert: status = %d", w.Code)
	}

	w = env.do(t, "GET", "/api/v1/contacts?business_type=Med%20Spa", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: status = %d", w.Code)
	}
	var resp struct {
		Items []models.Contact `json:"items"`
		Total int              `json:"total"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t, "secret")

	// No auth required on /metrics.
	w := env.do(t, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

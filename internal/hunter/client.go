// Package hunter is a client for the Hunter.io v2 API, covering the two
// calls the contact enrichment flow uses: domain search and email
// verification.
package hunter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.hunter.io"

	// DefaultTimeout covers Hunter's occasional slow verification calls.
	DefaultTimeout = 30 * time.Second
)

// ErrNotConfigured is returned when no API key is present.
var ErrNotConfigured = errors.New("hunter: API key not configured")

// Config carries the client configuration, injected at construction.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client calls the Hunter.io v2 API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a configured client, failing fast without an API key.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// DomainSearch holds the company-level result of a domain search.
type DomainSearch struct {
	Domain       string  `json:"domain"`
	Organization string  `json:"organization"`
	Emails       []Email `json:"emails"`
}

// Email is one address found for a domain.
type Email struct {
	Value      string `json:"value"`
	Type       string `json:"type"` // personal or generic
	Confidence int    `json:"confidence"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
}

// Verification is the result of verifying a single address.
type Verification struct {
	Status string `json:"status"` // valid, invalid, accept_all, webmail, disposable, unknown
	Result string `json:"result"` // deliverable, undeliverable, risky
	Score  int    `json:"score"`
	Email  string `json:"email"`
}

// APIError is a provider-reported error, surfaced with its code so callers
// can distinguish rate limiting from bad input.
type APIError struct {
	StatusCode int
	ID         string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("hunter: %s (%s)", e.Details, e.ID)
	}
	return fmt.Sprintf("hunter: HTTP %d", e.StatusCode)
}

// RateLimited reports whether the provider rejected the call for quota
// reasons; callers should back off rather than fail the batch.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

type errorEnvelope struct {
	Errors []struct {
		ID      string `json:"id"`
		Code    int    `json:"code"`
		Details string `json:"details"`
	} `json:"errors"`
}

// SearchDomain finds known addresses for a domain.
func (c *Client) SearchDomain(ctx context.Context, domain string) (*DomainSearch, error) {
	if domain == "" {
		return nil, fmt.Errorf("domain is required")
	}

	q := url.Values{}
	q.Set("domain", domain)

	var out struct {
		Data DomainSearch `json:"data"`
	}
	if err := c.get(ctx, "/v2/domain-search", q, &out); err != nil {
		return nil, fmt.Errorf("failed to search domain %s: %w", domain, err)
	}
	return &out.Data, nil
}

// VerifyEmail checks deliverability of one address.
func (c *Client) VerifyEmail(ctx context.Context, email string) (*Verification, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	q := url.Values{}
	q.Set("email", email)

	var out struct {
		Data Verification `json:"data"`
	}
	if err := c.get(ctx, "/v2/email-verifier", q, &out); err != nil {
		return nil, fmt.Errorf("failed to verify email %s: %w", email, err)
	}
	return &out.Data, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("api_key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope errorEnvelope
		if json.Unmarshal(body, &envelope) == nil && len(envelope.Errors) > 0 {
			apiErr.ID = envelope.Errors[0].ID
			apiErr.Details = envelope.Errors[0].Details
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

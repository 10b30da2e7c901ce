package leadprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lead-server/internal/leads"
	"lead-server/internal/observability"
)

// Client talks to the external lead database (an Apollo-like paginated
// search/enrichment API). The provider's ranking is opaque; results come back
// in provider order.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *observability.Logger
}

func New(baseURL, apiKey string, logger *observability.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("lead provider API key is required")
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// SearchResult is one page of provider search output.
type SearchResult struct {
	Leads        []leads.Lead `json:"leads"`
	TotalResults int          `json:"total_results"`
	Page         int          `json:"page"`
	PerPage      int          `json:"per_page"`
}

type searchRequest struct {
	JobTitles     []string `json:"person_titles,omitempty"`
	Locations     []string `json:"person_locations,omitempty"`
	Industries    []string `json:"organization_industries,omitempty"`
	CompanySizes  []string `json:"organization_num_employees_ranges,omitempty"`
	Companies     []string `json:"organization_names,omitempty"`
	EmailStatuses []string `json:"contact_email_statuses,omitempty"`
	Page          int      `json:"page"`
	PerPage       int      `json:"per_page"`
}

// Search runs a paginated people search with the given filters.
func (c *Client) Search(ctx context.Context, filters leads.ActiveFilters, page, perPage int) (SearchResult, error) {
	req := searchRequest{
		JobTitles:     filters.JobTitles,
		Locations:     filters.Locations,
		Industries:    filters.Industries,
		CompanySizes:  filters.CompanySizes,
		Companies:     filters.Companies,
		EmailStatuses: filters.EmailStatuses,
		Page:          page,
		PerPage:       perPage,
	}

	var result SearchResult
	if err := c.post(ctx, "/v1/people/search", req, &result); err != nil {
		return SearchResult{}, fmt.Errorf("provider search failed: %w", err)
	}
	if result.Leads == nil {
		result.Leads = []leads.Lead{}
	}
	return result, nil
}

type enrichRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Name      string `json:"name,omitempty"`
	Company   string `json:"organization_name,omitempty"`
	Title     string `json:"title,omitempty"`
}

type enrichResponse struct {
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	EmailStatus string `json:"email_status"`
}

// EnrichLead reveals a lead's email and phone through the paid enrichment
// endpoint. The returned lead is a copy with contact fields filled in.
func (c *Client) EnrichLead(ctx context.Context, lead leads.Lead) (leads.Lead, error) {
	req := enrichRequest{
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Name:      lead.Name,
		Company:   lead.Company,
		Title:     lead.Title,
	}

	var resp enrichResponse
	if err := c.post(ctx, "/v1/people/match", req, &resp); err != nil {
		return leads.Lead{}, fmt.Errorf("provider enrichment failed: %w", err)
	}

	enriched := lead
	if resp.Email != "" {
		enriched.Email = resp.Email
	}
	if resp.Phone != "" {
		enriched.Phone = resp.Phone
	}
	if resp.EmailStatus == string(leads.EmailStatusVerified) {
		enriched.EmailStatus = leads.EmailStatusVerified
	} else if enriched.EmailStatus == "" {
		enriched.EmailStatus = leads.EmailStatusUnverified
	}
	return enriched, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error(ctx, "lead provider request failed", err)
		return err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("lead provider returned status %d: %s", resp.StatusCode, string(responseBody))
		c.logger.Error(ctx, "lead provider returned non-success status", err)
		return err
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

package processor

import (
	"context"
	"fmt"
	"strings"

	"lead-server/internal/clients/leadprovider"
	"lead-server/internal/leads"
	"lead-server/internal/observability"
)

// Minimum viable result count on page 1 before the fallback ladder engages.
const minViableResults = 3

const (
	defaultPerPage = 25
	maxPerPage     = 100
)

// SearchOptions carries interpretation context into the orchestrator.
type SearchOptions struct {
	// LowConfidence is set when the interpreter degraded to keywords; it
	// unlocks the keyword-only floor once the ladder is exhausted.
	LowConfidence bool
}

// SearchResult is the orchestrator's answer to one search request.
type SearchResult struct {
	Leads        []leads.Lead     `json:"leads"`
	Pagination   leads.Pagination `json:"pagination"`
	FallbackUsed *FallbackInfo    `json:"fallback_used,omitempty"`
	Guidance     AdaptiveGuidance `json:"guidance"`
}

// Search executes a provider search, progressively relaxing filters through
// the ladder when page 1 under-returns. It returns the first filter
// combination that reaches the minimum viable threshold, or the most-relaxed
// attempt when the ladder is exhausted. Provider ordering is preserved.
func (p *DiscoveryProcessor) Search(ctx context.Context, filters leads.ActiveFilters, page, perPage int, opts SearchOptions) (SearchResult, error) {
	filters = filters.Normalize()
	if filters.IsEmpty() {
		return SearchResult{}, ErrEmptyFilters
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "page", Value: page},
		observability.Field{Key: "per_page", Value: perPage},
	)

	attempt, err := p.searchWithRetry(ctx, filters, page, perPage)
	if err != nil {
		return SearchResult{}, err
	}

	// The ladder only engages on page 1; deeper pages inherit whatever
	// filter set the caller paged with.
	if page > 1 || attempt.TotalResults >= minViableResults {
		return p.buildResult(filters, attempt, nil), nil
	}

	state := LadderState{}
	current := filters
	var changes []string
	best := attempt

	for {
		nextState, next, change, ok := p.policy.Advance(state, current)
		if !ok {
			break
		}
		state = nextState
		current = next
		changes = append(changes, change)

		ctx = observability.WithFields(ctx, observability.Field{Key: "fallback_level", Value: state.Level})
		p.logger.Info(ctx, "escalating search fallback")

		attempt, err = p.searchWithRetry(ctx, current, page, perPage)
		if err != nil {
			return SearchResult{}, err
		}
		best = attempt

		if attempt.TotalResults >= minViableResults {
			return p.buildResult(current, attempt, &FallbackInfo{
				Level:       state.Level,
				Description: describeFallback(changes),
				Changes:     changes,
			}), nil
		}
	}

	// Keyword-only floor: only reached when the interpreter already signaled
	// low confidence, never as an automatic last resort.
	if opts.LowConfidence {
		keyword := leads.ActiveFilters{
			JobTitles: filters.JobTitles,
			Companies: filters.Companies,
		}.Normalize()
		if !keyword.IsEmpty() {
			attempt, err = p.searchWithRetry(ctx, keyword, page, perPage)
			if err != nil {
				return SearchResult{}, err
			}
			if attempt.TotalResults > 0 {
				changes = append(changes, "fell back to keyword-only search")
				// The floor counts as its own relaxation step, so Level
				// always equals len(Changes) even when the ladder had
				// nothing to relax.
				return p.buildResult(keyword, attempt, &FallbackInfo{
					Level:       len(changes),
					Description: describeFallback(changes),
					Changes:     changes,
				}), nil
			}
			best = attempt
		}
	}

	var fallback *FallbackInfo
	if state.Level > 0 {
		fallback = &FallbackInfo{
			Level:       state.Level,
			Description: describeFallback(changes) + " No combination reached the minimum result threshold.",
			Changes:     changes,
		}
	}
	return p.buildResult(current, best, fallback), nil
}

// searchWithRetry retries a failed provider call once with unchanged filters.
// A second failure is terminal for the request, not a fallback trigger.
func (p *DiscoveryProcessor) searchWithRetry(ctx context.Context, filters leads.ActiveFilters, page, perPage int) (leadprovider.SearchResult, error) {
	result, err := p.provider.Search(ctx, filters, page, perPage)
	if err == nil {
		return result, nil
	}
	p.logger.Error(ctx, "provider search failed, retrying once", err)

	result, retryErr := p.provider.Search(ctx, filters, page, perPage)
	if retryErr == nil {
		return result, nil
	}
	p.logger.Error(ctx, "provider search retry failed", retryErr)
	return leadprovider.SearchResult{}, fmt.Errorf("%w: %s", ErrProviderUnavailable, retryErr.Error())
}

func (p *DiscoveryProcessor) buildResult(filters leads.ActiveFilters, attempt leadprovider.SearchResult, fallback *FallbackInfo) SearchResult {
	page := attempt.Page
	if page < 1 {
		page = 1
	}
	perPage := attempt.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	totalPages := (attempt.TotalResults + perPage - 1) / perPage

	resultLeads := attempt.Leads
	if resultLeads == nil {
		resultLeads = []leads.Lead{}
	}

	return SearchResult{
		Leads: resultLeads,
		Pagination: leads.Pagination{
			Page:         page,
			PerPage:      perPage,
			TotalResults: attempt.TotalResults,
			TotalPages:   totalPages,
		},
		FallbackUsed: fallback,
		Guidance:     p.Analyze(filters, attempt.TotalResults),
	}
}

// SearchByQuery interprets free text and runs the resulting filters through
// the orchestrator in one call.
func (p *DiscoveryProcessor) SearchByQuery(ctx context.Context, query string, page, perPage int) (Interpretation, SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return Interpretation{}, SearchResult{}, ErrEmptyQuery
	}

	interpretation := p.Interpret(ctx, query)
	if interpretation.Filters.IsEmpty() {
		return interpretation, SearchResult{}, ErrEmptyFilters
	}

	result, err := p.Search(ctx, interpretation.Filters, page, perPage, SearchOptions{
		LowConfidence: interpretation.NeedsClarification,
	})
	if err != nil {
		return interpretation, SearchResult{}, err
	}
	return interpretation, result, nil
}

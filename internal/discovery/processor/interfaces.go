package processor

import (
	"context"

	"lead-server/internal/clients/aiclassifier"
	"lead-server/internal/clients/leadprovider"
	"lead-server/internal/leads"
)

// Classifier is the opaque AI model that turns free text into filters.
type Classifier interface {
	InterpretQuery(ctx context.Context, query string) (aiclassifier.Result, error)
}

// LeadProvider is the opaque paginated people-search API.
type LeadProvider interface {
	Search(ctx context.Context, filters leads.ActiveFilters, page, perPage int) (leadprovider.SearchResult, error)
}

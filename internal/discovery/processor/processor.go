package processor

import (
	"errors"

	"lead-server/internal/observability"
)

var (
	ErrEmptyFilters        = errors.New("at least one search filter is required")
	ErrEmptyQuery          = errors.New("search query must not be empty")
	ErrProviderUnavailable = errors.New("lead provider unavailable")
)

// DiscoveryProcessor owns the search side of the pipeline: query
// interpretation, the fallback search ladder, and adaptive guidance.
type DiscoveryProcessor struct {
	classifier Classifier
	provider   LeadProvider
	policy     LadderPolicy
	logger     *observability.Logger
}

func New(classifier Classifier, provider LeadProvider, policy LadderPolicy, logger *observability.Logger) DiscoveryProcessor {
	if len(policy) == 0 {
		policy = DefaultLadderPolicy()
	}
	return DiscoveryProcessor{
		classifier: classifier,
		provider:   provider,
		policy:     policy,
		logger:     logger,
	}
}

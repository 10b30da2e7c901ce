package processor

import (
	"context"
	"strings"

	"lead-server/internal/leads"
	"lead-server/internal/observability"
)

// Below this confidence the interpretation is treated as a failed parse and
// degraded to a keyword match.
const minUsableConfidence = 0.2

// Interpretation is the structured reading of a free-text query.
type Interpretation struct {
	Filters            leads.ActiveFilters `json:"filters"`
	Confidence         float64             `json:"confidence"`
	Explanation        string              `json:"explanation"`
	NeedsClarification bool                `json:"needs_clarification"`
}

// Interpret translates free text into structured filters. Classifier failures
// (timeout, malformed response, low-confidence parse) are never surfaced as
// errors; the result degrades to a best-effort keyword match against the
// company and title fields with confidence 0.
func (p *DiscoveryProcessor) Interpret(ctx context.Context, query string) Interpretation {
	ctx = observability.WithFields(ctx, observability.Field{Key: "query", Value: query})

	result, err := p.classifier.InterpretQuery(ctx, query)
	if err != nil {
		p.logger.Error(ctx, "classifier failed, degrading to keyword filters", err)
		return p.keywordInterpretation(query)
	}

	if result.Confidence < minUsableConfidence || result.Filters.IsEmpty() {
		p.logger.Warn(ctx, "classifier produced unusable interpretation, degrading to keyword filters")
		return p.keywordInterpretation(query)
	}

	return Interpretation{
		Filters:            result.Filters,
		Confidence:         result.Confidence,
		Explanation:        result.Explanation,
		NeedsClarification: false,
	}
}

func (p *DiscoveryProcessor) keywordInterpretation(query string) Interpretation {
	keywords := extractKeywords(query)
	filters := leads.ActiveFilters{}
	if keywords != "" {
		filters.JobTitles = []string{keywords}
		filters.Companies = []string{keywords}
	}
	return Interpretation{
		Filters:            filters,
		Confidence:         0,
		Explanation:        "Could not fully interpret the request; searching by keywords instead.",
		NeedsClarification: true,
	}
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "at": true, "in": true, "of": true,
	"for": true, "and": true, "or": true, "with": true, "find": true,
	"me": true, "get": true, "show": true, "all": true, "some": true,
}

func extractKeywords(query string) string {
	words := strings.Fields(query)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		trimmed := strings.Trim(w, ".,!?;:\"'")
		if trimmed == "" || stopwords[strings.ToLower(trimmed)] {
			continue
		}
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, " ")
}

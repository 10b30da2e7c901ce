package processor

import "lead-server/internal/leads"

// Result volumes above which an unconstrained signal type earns a tip.
const (
	broadResultThreshold   = 500
	verifiedEmailThreshold = 100
)

// AdaptiveGuidance is advisory output about missing or under-specified
// filter signals. It never blocks or mutates search execution.
type AdaptiveGuidance struct {
	HasRecommendations bool     `json:"has_recommendations"`
	Tips               []string `json:"tips"`
	SuggestedAdditions []string `json:"suggested_additions"`
}

// Analyze inspects which signal types are absent relative to result volume.
// Pure function; callers may dismiss the output freely.
func (p *DiscoveryProcessor) Analyze(filters leads.ActiveFilters, resultCount int) AdaptiveGuidance {
	var tips []string
	var additions []string

	if resultCount > broadResultThreshold {
		if len(filters.Locations) == 0 {
			tips = append(tips, "Narrow by location to focus on a territory.")
			additions = append(additions, "locations")
		}
		if len(filters.Industries) == 0 {
			tips = append(tips, "Add an industry filter to sharpen targeting.")
			additions = append(additions, "industries")
		}
	}

	if resultCount > verifiedEmailThreshold && len(filters.EmailStatuses) == 0 {
		tips = append(tips, "Filter to verified emails to protect deliverability.")
		additions = append(additions, "email_statuses")
	}

	if len(filters.JobTitles) == 0 {
		tips = append(tips, "Add job titles to reach the right decision makers.")
		additions = append(additions, "job_titles")
	}

	if resultCount < minViableResults && filters.FieldCount() >= 3 {
		tips = append(tips, "Very few results; consider removing your most restrictive filter.")
	}

	return AdaptiveGuidance{
		HasRecommendations: len(tips) > 0,
		Tips:               tips,
		SuggestedAdditions: additions,
	}
}

package processor

import (
	"fmt"
	"strings"

	"lead-server/internal/leads"
)

// FilterField names a relaxable filter field in the fallback ladder.
type FilterField string

const (
	FieldCompanySizes FilterField = "company_sizes"
	FieldLocations    FilterField = "locations"
	FieldIndustries   FilterField = "industries"
)

// LadderPolicy is the ordered list of fields the orchestrator relaxes when a
// search under-returns. Which field to drop first is a product decision, so
// the order is configuration, not law.
type LadderPolicy []FilterField

// DefaultLadderPolicy relaxes the least selective field first.
func DefaultLadderPolicy() LadderPolicy {
	return LadderPolicy{FieldCompanySizes, FieldLocations, FieldIndustries}
}

// Hard ceiling on escalations per search.
const maxEscalations = 3

// LadderState tracks progress through the fallback ladder. Level counts
// performed escalations; Exhausted means no further relaxation is possible.
type LadderState struct {
	Level       int
	Exhausted   bool
	policyIndex int
}

// FallbackInfo reports which relaxation produced the returned results.
type FallbackInfo struct {
	Level       int      `json:"level"`
	Description string   `json:"description"`
	Changes     []string `json:"changes"`
}

// Advance is the ladder's pure transition function. Given the current state
// and filters it produces the next relaxed filter set and a description of
// the change. ok is false when the ladder is exhausted: the ceiling was hit,
// no policy field remains to relax, or relaxing would drop the last
// remaining filter field.
func (policy LadderPolicy) Advance(state LadderState, filters leads.ActiveFilters) (LadderState, leads.ActiveFilters, string, bool) {
	if state.Exhausted || state.Level >= maxEscalations {
		state.Exhausted = true
		return state, filters, "", false
	}

	for i := state.policyIndex; i < len(policy); i++ {
		next, change, applied := relaxField(policy[i], filters)
		if !applied {
			continue
		}
		// Never silently drop every filter: keyword-only search is a
		// deliberate floor, not an automatic last resort.
		if next.IsEmpty() {
			continue
		}
		state.policyIndex = i + 1
		state.Level++
		return state, next, change, true
	}

	state.Exhausted = true
	return state, filters, "", false
}

func relaxField(field FilterField, filters leads.ActiveFilters) (leads.ActiveFilters, string, bool) {
	switch field {
	case FieldCompanySizes:
		if len(filters.CompanySizes) == 0 {
			return filters, "", false
		}
		next := filters
		next.CompanySizes = nil
		return next, "removed company size filter", true

	case FieldLocations:
		if len(filters.Locations) == 0 {
			return filters, "", false
		}
		next := filters
		relaxed := relaxLocations(filters.Locations)
		if len(relaxed) > 0 {
			next.Locations = relaxed
			return next, "removed city-level location detail, searching by state/region", true
		}
		next.Locations = nil
		return next, "removed location filter", true

	case FieldIndustries:
		if len(filters.Industries) == 0 {
			return filters, "", false
		}
		next := filters
		next.Industries = nil
		return next, "removed industry filter", true
	}
	return filters, "", false
}

// relaxLocations reduces "City, Region" entries to their region; entries
// already at region level pass through unchanged. A nil result means no entry
// was city-specific, so the only remaining relaxation is dropping the field.
func relaxLocations(locations []string) []string {
	seen := make(map[string]bool, len(locations))
	out := make([]string, 0, len(locations))
	changed := false
	for _, loc := range locations {
		entry := strings.TrimSpace(loc)
		if idx := strings.LastIndex(loc, ","); idx >= 0 {
			region := strings.TrimSpace(loc[idx+1:])
			if region != "" {
				entry = region
				changed = true
			}
		}
		key := strings.ToLower(entry)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, entry)
	}
	if !changed {
		return nil
	}
	return out
}

func describeFallback(changes []string) string {
	return fmt.Sprintf("Initial filters returned too few results; %s.", strings.Join(changes, ", then "))
}

package processor

import (
	"strings"
	"testing"

	"lead-server/internal/leads"
)

func containsTip(g AdaptiveGuidance, substr string) bool {
	for _, tip := range g.Tips {
		if strings.Contains(tip, substr) {
			return true
		}
	}
	return false
}

func TestAnalyzeBroadResultsWithoutLocation(t *testing.T) {
	p := New(nil, nil, nil, testLogger(t))
	g := p.Analyze(leads.ActiveFilters{JobTitles: []string{"CTO"}}, 1200)

	if !g.HasRecommendations {
		t.Fatal("expected recommendations for broad unlocated search")
	}
	if !containsTip(g, "location") {
		t.Errorf("missing location tip: %v", g.Tips)
	}
	found := false
	for _, a := range g.SuggestedAdditions {
		if a == "locations" {
			found = true
		}
	}
	if !found {
		t.Errorf("suggested additions = %v, want locations", g.SuggestedAdditions)
	}
}

func TestAnalyzeSuggestsVerifiedEmails(t *testing.T) {
	p := New(nil, nil, nil, testLogger(t))
	g := p.Analyze(leads.ActiveFilters{
		JobTitles: []string{"CTO"},
		Locations: []string{"Texas"},
	}, 250)

	if !containsTip(g, "verified") {
		t.Errorf("missing verified-email tip: %v", g.Tips)
	}
}

func TestAnalyzeSuggestsJobTitles(t *testing.T) {
	p := New(nil, nil, nil, testLogger(t))
	g := p.Analyze(leads.ActiveFilters{Industries: []string{"SaaS"}}, 50)

	if !containsTip(g, "job titles") {
		t.Errorf("missing job-title tip: %v", g.Tips)
	}
}

func TestAnalyzeSuggestsBroadeningNarrowSearch(t *testing.T) {
	p := New(nil, nil, nil, testLogger(t))
	g := p.Analyze(leads.ActiveFilters{
		JobTitles:    []string{"CTO"},
		Locations:    []string{"Austin, Texas"},
		Industries:   []string{"SaaS"},
		CompanySizes: []string{"1-10"},
	}, 1)

	if !containsTip(g, "restrictive") {
		t.Errorf("missing broaden tip: %v", g.Tips)
	}
}

func TestAnalyzeQuietForWellScopedSearch(t *testing.T) {
	p := New(nil, nil, nil, testLogger(t))
	g := p.Analyze(leads.ActiveFilters{
		JobTitles:     []string{"CTO"},
		Locations:     []string{"Texas"},
		Industries:    []string{"SaaS"},
		EmailStatuses: []string{string(leads.EmailStatusVerified)},
	}, 40)

	if g.HasRecommendations {
		t.Errorf("expected no recommendations, got %v", g.Tips)
	}
}

package processor

import (
	"reflect"
	"testing"

	"lead-server/internal/leads"
)

func TestAdvanceRemovesCompanySizeFirst(t *testing.T) {
	policy := DefaultLadderPolicy()
	filters := leads.ActiveFilters{
		JobTitles:    []string{"VP Sales"},
		Locations:    []string{"Austin, Texas"},
		Industries:   []string{"SaaS"},
		CompanySizes: []string{"51-200"},
	}

	state, next, change, ok := policy.Advance(LadderState{}, filters)
	if !ok {
		t.Fatal("expected first escalation to apply")
	}
	if state.Level != 1 {
		t.Errorf("level = %d, want 1", state.Level)
	}
	if len(next.CompanySizes) != 0 {
		t.Errorf("company sizes not removed: %v", next.CompanySizes)
	}
	if len(next.Locations) != 1 || next.Locations[0] != "Austin, Texas" {
		t.Errorf("locations changed prematurely: %v", next.Locations)
	}
	if change != "removed company size filter" {
		t.Errorf("unexpected change description %q", change)
	}
}

func TestAdvanceRelaxesCityToRegion(t *testing.T) {
	policy := DefaultLadderPolicy()
	filters := leads.ActiveFilters{
		JobTitles: []string{"CTO"},
		Locations: []string{"Austin, Texas", "Denver, Colorado"},
	}

	_, next, _, ok := policy.Advance(LadderState{}, filters)
	if !ok {
		t.Fatal("expected escalation to apply")
	}
	want := []string{"Texas", "Colorado"}
	if !reflect.DeepEqual(next.Locations, want) {
		t.Errorf("locations = %v, want %v", next.Locations, want)
	}
}

func TestAdvanceDropsRegionOnlyLocations(t *testing.T) {
	policy := DefaultLadderPolicy()
	filters := leads.ActiveFilters{
		JobTitles: []string{"CTO"},
		Locations: []string{"Texas"},
	}

	_, next, change, ok := policy.Advance(LadderState{}, filters)
	if !ok {
		t.Fatal("expected escalation to apply")
	}
	if len(next.Locations) != 0 {
		t.Errorf("locations = %v, want removed", next.Locations)
	}
	if change != "removed location filter" {
		t.Errorf("unexpected change description %q", change)
	}
}

func TestAdvanceSkipsEmptyFields(t *testing.T) {
	policy := DefaultLadderPolicy()
	filters := leads.ActiveFilters{
		JobTitles:  []string{"CTO"},
		Industries: []string{"Fintech"},
	}

	_, next, change, ok := policy.Advance(LadderState{}, filters)
	if !ok {
		t.Fatal("expected escalation to apply")
	}
	if len(next.Industries) != 0 {
		t.Errorf("industries = %v, want removed", next.Industries)
	}
	if change != "removed industry filter" {
		t.Errorf("unexpected change description %q", change)
	}
}

func TestAdvanceNeverEmptiesAllFilters(t *testing.T) {
	policy := DefaultLadderPolicy()
	filters := leads.ActiveFilters{
		Industries: []string{"Fintech"},
	}

	state, next, _, ok := policy.Advance(LadderState{}, filters)
	if ok {
		t.Fatalf("expected ladder to refuse dropping the last filter, got %+v", next)
	}
	if !state.Exhausted {
		t.Error("expected state to be exhausted")
	}
}

func TestAdvanceStopsAtCeiling(t *testing.T) {
	policy := DefaultLadderPolicy()
	state := LadderState{Level: maxEscalations}
	filters := leads.ActiveFilters{
		JobTitles:    []string{"CTO"},
		CompanySizes: []string{"1-10"},
	}

	next, _, _, ok := policy.Advance(state, filters)
	if ok {
		t.Fatal("expected ladder to stop at the escalation ceiling")
	}
	if !next.Exhausted {
		t.Error("expected state to be exhausted at ceiling")
	}
}

func TestAdvanceFullLadderSequence(t *testing.T) {
	policy := DefaultLadderPolicy()
	filters := leads.ActiveFilters{
		JobTitles:    []string{"VP Engineering"},
		Locations:    []string{"Berlin, Germany"},
		Industries:   []string{"SaaS"},
		CompanySizes: []string{"201-500"},
	}

	state := LadderState{}
	var changes []string
	for {
		nextState, next, change, ok := policy.Advance(state, filters)
		if !ok {
			break
		}
		state = nextState
		filters = next
		changes = append(changes, change)
	}

	want := []string{
		"removed company size filter",
		"removed city-level location detail, searching by state/region",
		"removed industry filter",
	}
	if !reflect.DeepEqual(changes, want) {
		t.Errorf("changes = %v, want %v", changes, want)
	}
	if state.Level != 3 {
		t.Errorf("final level = %d, want 3", state.Level)
	}
	if len(filters.JobTitles) != 1 {
		t.Errorf("job titles should survive the ladder: %v", filters.JobTitles)
	}
}

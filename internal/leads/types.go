package leads

import "strings"

// EmailStatus describes the verification state of a lead's email address.
type EmailStatus string

const (
	EmailStatusVerified   EmailStatus = "verified"
	EmailStatusUnverified EmailStatus = "unverified"
)

// ActiveFilters is the structured query sent to the lead provider.
// Each field is a set of strings; insertion order is irrelevant and
// duplicates are removed by Normalize.
type ActiveFilters struct {
	JobTitles     []string `json:"job_titles,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	Industries    []string `json:"industries,omitempty"`
	CompanySizes  []string `json:"company_sizes,omitempty"`
	Companies     []string `json:"companies,omitempty"`
	EmailStatuses []string `json:"email_statuses,omitempty"`
}

// Normalize trims whitespace and removes duplicate entries from every field.
func (f ActiveFilters) Normalize() ActiveFilters {
	return ActiveFilters{
		JobTitles:     dedupe(f.JobTitles),
		Locations:     dedupe(f.Locations),
		Industries:    dedupe(f.Industries),
		CompanySizes:  dedupe(f.CompanySizes),
		Companies:     dedupe(f.Companies),
		EmailStatuses: dedupe(f.EmailStatuses),
	}
}

// IsEmpty reports whether no field carries a value. A filter set used for
// search must have at least one non-empty field.
func (f ActiveFilters) IsEmpty() bool {
	return len(f.JobTitles) == 0 &&
		len(f.Locations) == 0 &&
		len(f.Industries) == 0 &&
		len(f.CompanySizes) == 0 &&
		len(f.Companies) == 0 &&
		len(f.EmailStatuses) == 0
}

// FieldCount returns the number of non-empty filter fields.
func (f ActiveFilters) FieldCount() int {
	count := 0
	for _, set := range [][]string{f.JobTitles, f.Locations, f.Industries, f.CompanySizes, f.Companies, f.EmailStatuses} {
		if len(set) > 0 {
			count++
		}
	}
	return count
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Lead is an unpersisted, provider-sourced candidate contact. It exists only
// within a search response's lifetime; importing it creates a Contact.
type Lead struct {
	Name         string      `json:"name"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Title        string      `json:"title"`
	Company      string      `json:"company"`
	Seniority    string      `json:"seniority"`
	Industry     string      `json:"industry"`
	CompanySize  string      `json:"company_size"`
	Location     string      `json:"location"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	EmailStatus  EmailStatus `json:"email_status"`
	ICPScore     *int        `json:"icp_score,omitempty"`
	MatchReasons []string    `json:"match_reasons,omitempty"`
}

// NormalizeEmail canonicalizes an email address for deduplication.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Pagination describes the provider's paging of a search result.
type Pagination struct {
	Page         int `json:"page"`
	PerPage      int `json:"per_page"`
	TotalResults int `json:"total_results"`
	TotalPages   int `json:"total_pages"`
}

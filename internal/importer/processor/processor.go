package processor

import (
	"context"
	"errors"

	"lead-server/internal/leads"
	"lead-server/internal/observability"
	quotaProcessor "lead-server/internal/quota/processor"
	"lead-server/internal/store"

	"github.com/google/uuid"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrUnauthorized     = errors.New("campaign belongs to another user")
	ErrNoLeads          = errors.New("no leads to import")
)

// A campaign holds at most this many contacts. Importing past the cap evicts
// the oldest link, preferring contacts that have not been emailed yet.
const maxCampaignContacts = 25

// OutcomeStatus classifies what happened to a single lead during import.
type OutcomeStatus string

const (
	// OutcomeImported means a new contact was created and linked.
	OutcomeImported OutcomeStatus = "imported"
	// OutcomeLinkedExisting means the contact already existed and was linked.
	OutcomeLinkedExisting OutcomeStatus = "linked_existing"
	// OutcomeDuplicateAlreadyLinked means the contact was already in the campaign.
	OutcomeDuplicateAlreadyLinked OutcomeStatus = "duplicate_already_linked"
	// OutcomeFailed means the lead could not be persisted.
	OutcomeFailed OutcomeStatus = "failed"
	// OutcomeQuotaExceeded means the lead needed enrichment but no quota remained.
	OutcomeQuotaExceeded OutcomeStatus = "quota_exceeded"
)

// LeadOutcome is the per-lead import report, in input order.
type LeadOutcome struct {
	Lead      leads.Lead    `json:"lead"`
	Status    OutcomeStatus `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	ContactID *uuid.UUID    `json:"contact_id,omitempty"`
}

// EvictedContact reports a contact pushed out by the campaign cap.
type EvictedContact struct {
	ContactID uuid.UUID `json:"contact_id"`
	WasSent   bool      `json:"was_sent"`
}

// Verification compares the campaign's expected link count after the batch
// with a re-queried actual count. A discrepancy means something else mutated
// the campaign while the import ran.
type Verification struct {
	ExpectedLinkedCount int  `json:"expected_linked_count"`
	ActualLinkedCount   int  `json:"actual_linked_count"`
	IsVerified          bool `json:"is_verified"`
	Discrepancy         int  `json:"discrepancy"`
}

// ImportResult is the full report for one import request.
type ImportResult struct {
	Outcomes      []LeadOutcome         `json:"outcomes"`
	Imported      int                   `json:"imported"`
	Linked        int                   `json:"linked_existing"`
	AlreadyLinked int                   `json:"already_linked"`
	Failed        int                   `json:"failed"`
	QuotaExceeded int                   `json:"quota_exceeded"`
	Evicted       []EvictedContact      `json:"evicted,omitempty"`
	Verification  Verification          `json:"verification"`
	Quota         quotaProcessor.Status `json:"quota"`
}

// ImportProcessor turns provider leads into persisted contacts linked to a
// campaign. Missing emails are revealed through paid enrichment, bounded by
// the user's monthly quota.
type ImportProcessor struct {
	store    ImportStore
	quota    QuotaService
	enricher Enricher
	workers  int
	logger   *observability.Logger
}

func New(store ImportStore, quota QuotaService, enricher Enricher, workers int, logger *observability.Logger) ImportProcessor {
	if workers <= 0 {
		workers = defaultEnrichmentWorkers
	}
	return ImportProcessor{
		store:    store,
		quota:    quota,
		enricher: enricher,
		workers:  workers,
		logger:   logger,
	}
}

// ImportLeads imports a batch of leads into the campaign. Enrichment runs
// concurrently up to the worker bound; persistence is sequential in input
// order so outcomes and evictions are deterministic. The result reports a
// per-lead outcome even when individual leads fail.
func (p *ImportProcessor) ImportLeads(ctx context.Context, userID, campaignID uuid.UUID, input []leads.Lead) (ImportResult, error) {
	if len(input) == 0 {
		return ImportResult{}, ErrNoLeads
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "campaign_id", Value: campaignID},
		observability.Field{Key: "lead_count", Value: len(input)},
	)

	campaign, err := p.store.GetCampaignByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ImportResult{}, ErrCampaignNotFound
		}
		p.logger.Error(ctx, "failed to load campaign", err)
		return ImportResult{}, err
	}
	if campaign.UserID != userID {
		return ImportResult{}, ErrUnauthorized
	}

	initialCount, err := p.store.CountCampaignContacts(ctx, campaignID)
	if err != nil {
		p.logger.Error(ctx, "failed to count campaign contacts", err)
		return ImportResult{}, err
	}

	outcomes := make([]LeadOutcome, len(input))
	for i, lead := range input {
		outcomes[i] = LeadOutcome{Lead: lead}
	}

	// Leads without an email need paid enrichment before they can be
	// deduplicated and stored.
	var needEnrichment []int
	for i, lead := range input {
		if leads.NormalizeEmail(lead.Email) == "" {
			needEnrichment = append(needEnrichment, i)
		}
	}

	authorized, _, err := p.quota.AuthorizeEnrichment(ctx, userID, len(needEnrichment))
	if err != nil {
		p.logger.Error(ctx, "failed to authorize enrichment", err)
		return ImportResult{}, err
	}

	// Leads beyond the authorized budget are reported, never silently dropped.
	for _, idx := range needEnrichment[authorized:] {
		outcomes[idx].Status = OutcomeQuotaExceeded
		outcomes[idx].Reason = "monthly enrichment quota exhausted"
	}

	enriched := p.enrichConcurrently(ctx, input, needEnrichment[:authorized])
	for idx, result := range enriched {
		if result.err != nil {
			outcomes[idx].Status = OutcomeFailed
			outcomes[idx].Reason = "enrichment failed"
			continue
		}
		outcomes[idx].Lead = result.lead
	}

	// Only enrichments that actually ran are billed; the rest of the
	// reservation flows back.
	actual := 0
	for _, result := range enriched {
		if result.err == nil {
			actual++
		}
	}

	result := ImportResult{}
	for i := range outcomes {
		if outcomes[i].Status != "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			outcomes[i].Status = OutcomeFailed
			outcomes[i].Reason = "import canceled"
			continue
		}
		p.persistLead(ctx, userID, campaignID, &outcomes[i], &result)
	}

	quotaStatus, err := p.quota.ConsumeEnrichment(ctx, userID, authorized, actual)
	if err != nil {
		p.logger.Error(ctx, "failed to settle enrichment quota", err)
	}
	result.Quota = quotaStatus

	for _, o := range outcomes {
		switch o.Status {
		case OutcomeImported:
			result.Imported++
		case OutcomeLinkedExisting:
			result.Linked++
		case OutcomeDuplicateAlreadyLinked:
			result.AlreadyLinked++
		case OutcomeFailed:
			result.Failed++
		case OutcomeQuotaExceeded:
			result.QuotaExceeded++
		}
	}
	result.Outcomes = outcomes

	// Post-import verification: re-query the actual link count and compare it
	// with what this batch should have left behind. A mismatch means a
	// concurrent edit raced the import.
	expected := initialCount + result.Imported + result.Linked - len(result.Evicted)
	result.Verification = Verification{ExpectedLinkedCount: expected}
	linkCount, err := p.store.CountCampaignContacts(ctx, campaignID)
	if err != nil {
		p.logger.Error(ctx, "failed to verify campaign contact count", err)
	} else {
		result.Verification.ActualLinkedCount = linkCount
		result.Verification.Discrepancy = linkCount - expected
		result.Verification.IsVerified = linkCount == expected
	}

	p.logger.Info(observability.WithFields(ctx,
		observability.Field{Key: "imported", Value: result.Imported},
		observability.Field{Key: "linked_existing", Value: result.Linked},
		observability.Field{Key: "already_linked", Value: result.AlreadyLinked},
		observability.Field{Key: "failed", Value: result.Failed},
		observability.Field{Key: "quota_exceeded", Value: result.QuotaExceeded},
		observability.Field{Key: "verified", Value: result.Verification.IsVerified},
	), "import finished")

	return result, nil
}

// persistLead writes one lead and its campaign link, recording the outcome in
// place. Failures are per-lead and never abort the batch.
func (p *ImportProcessor) persistLead(ctx context.Context, userID, campaignID uuid.UUID, outcome *LeadOutcome, result *ImportResult) {
	lead := outcome.Lead
	email := leads.NormalizeEmail(lead.Email)
	if email == "" {
		outcome.Status = OutcomeFailed
		outcome.Reason = "enrichment returned no email"
		return
	}

	existing, err := p.store.GetContactByEmail(ctx, userID, email)
	exists := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		p.logger.Error(ctx, "failed to look up contact", err)
		outcome.Status = OutcomeFailed
		outcome.Reason = "contact lookup failed"
		return
	}

	// An already-linked contact is a no-op; it must never reach the cap
	// check, or a full campaign would evict a contact for nothing.
	if exists {
		_, linkErr := p.store.GetCampaignContact(ctx, campaignID, existing.ID)
		if linkErr == nil {
			outcome.Status = OutcomeDuplicateAlreadyLinked
			outcome.ContactID = &existing.ID
			return
		}
		if !errors.Is(linkErr, store.ErrNotFound) {
			p.logger.Error(ctx, "failed to check campaign link", linkErr)
			outcome.Status = OutcomeFailed
			outcome.Reason = "campaign link failed"
			return
		}
	}

	contact, err := p.store.UpsertContact(ctx, contactParams(userID, lead, email))
	if err != nil {
		p.logger.Error(ctx, "failed to upsert contact", err)
		outcome.Status = OutcomeFailed
		outcome.Reason = "contact persistence failed"
		return
	}
	outcome.ContactID = &contact.ID

	count, err := p.store.CountCampaignContacts(ctx, campaignID)
	if err != nil {
		p.logger.Error(ctx, "failed to count campaign contacts", err)
		outcome.Status = OutcomeFailed
		outcome.Reason = "campaign link failed"
		return
	}
	if count >= maxCampaignContacts {
		evicted, err := p.store.EvictOldestCampaignContact(ctx, campaignID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			p.logger.Error(ctx, "failed to evict oldest campaign contact", err)
			outcome.Status = OutcomeFailed
			outcome.Reason = "campaign link failed"
			return
		}
		if err == nil {
			result.Evicted = append(result.Evicted, EvictedContact{
				ContactID: evicted.ContactID,
				WasSent:   evicted.SentEmailID != nil,
			})
		}
	}

	_, err = p.store.CreateCampaignContact(ctx, campaignID, contact.ID)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyLinked) {
			outcome.Status = OutcomeDuplicateAlreadyLinked
			return
		}
		p.logger.Error(ctx, "failed to link contact to campaign", err)
		outcome.Status = OutcomeFailed
		outcome.Reason = "campaign link failed"
		return
	}

	if exists {
		outcome.Status = OutcomeLinkedExisting
		outcome.ContactID = &existing.ID
		return
	}
	outcome.Status = OutcomeImported
}

func contactParams(userID uuid.UUID, lead leads.Lead, email string) store.CreateContactParams {
	params := store.CreateContactParams{
		UserID: userID,
		Name:   lead.Name,
		Email:  &email,
	}
	if params.Name == "" {
		params.Name = lead.FirstName + " " + lead.LastName
	}
	if lead.Company != "" {
		params.Company = &lead.Company
	}
	if lead.Phone != "" {
		params.Phone = &lead.Phone
	}
	if lead.Title != "" {
		params.Position = &lead.Title
	}
	return params
}

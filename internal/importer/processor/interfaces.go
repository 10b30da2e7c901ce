package processor

import (
	"context"

	"lead-server/internal/leads"
	quotaProcessor "lead-server/internal/quota/processor"
	"lead-server/internal/store"

	"github.com/google/uuid"
)

// ImportStore defines the database operations required by ImportProcessor
type ImportStore interface {
	GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (store.Campaign, error)
	GetContactByEmail(ctx context.Context, userID uuid.UUID, email string) (store.Contact, error)
	GetCampaignContact(ctx context.Context, campaignID, contactID uuid.UUID) (store.CampaignContact, error)
	UpsertContact(ctx context.Context, params store.CreateContactParams) (store.Contact, error)
	CreateCampaignContact(ctx context.Context, campaignID, contactID uuid.UUID) (store.CampaignContact, error)
	CountCampaignContacts(ctx context.Context, campaignID uuid.UUID) (int, error)
	EvictOldestCampaignContact(ctx context.Context, campaignID uuid.UUID) (store.CampaignContact, error)
}

// QuotaService defines the quota operations required by ImportProcessor
type QuotaService interface {
	AuthorizeEnrichment(ctx context.Context, userID uuid.UUID, requested int) (int, quotaProcessor.Status, error)
	ConsumeEnrichment(ctx context.Context, userID uuid.UUID, authorized, actual int) (quotaProcessor.Status, error)
}

// Enricher defines the provider enrichment operation required by ImportProcessor
type Enricher interface {
	EnrichLead(ctx context.Context, lead leads.Lead) (leads.Lead, error)
}

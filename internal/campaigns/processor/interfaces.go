package processor

import (
	"context"

	"lead-server/internal/email"
	"lead-server/internal/store"

	"github.com/google/uuid"
)

// CampaignStore defines the database operations required by CampaignProcessor
type CampaignStore interface {
	CreateCampaign(ctx context.Context, userID uuid.UUID, name string) (store.Campaign, error)
	GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (store.Campaign, error)
	ListCampaignsByUserID(ctx context.Context, userID uuid.UUID) ([]store.Campaign, error)
	ListCampaignContacts(ctx context.Context, campaignID uuid.UUID) ([]store.CampaignContactWithDetails, error)
	CountCampaignContacts(ctx context.Context, campaignID uuid.UUID) (int, error)
	GetCampaignContact(ctx context.Context, campaignID, contactID uuid.UUID) (store.CampaignContact, error)
	GetContactByID(ctx context.Context, contactID uuid.UUID) (store.Contact, error)
	DeleteCampaignContact(ctx context.Context, campaignID, contactID uuid.UUID) error
	DeleteAllCampaignContacts(ctx context.Context, campaignID uuid.UUID) (int, error)
	SetCampaignContactSentEmail(ctx context.Context, campaignID, contactID uuid.UUID, sentEmailID string) (store.CampaignContact, error)
}

// OutreachSender defines the email operations required by CampaignProcessor
type OutreachSender interface {
	SendOutreachEmail(ctx context.Context, to, subject string, data email.TemplateData) (string, error)
}

package processor

import (
	"context"
	"errors"
	"strings"

	"lead-server/internal/email"
	"lead-server/internal/observability"
	"lead-server/internal/store"

	"github.com/google/uuid"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrUnauthorized     = errors.New("campaign belongs to another user")
	ErrContactNotFound  = errors.New("contact not found in campaign")
	ErrEmptyName        = errors.New("campaign name is required")
	ErrMissingEmail     = errors.New("contact has no email address")
)

// CampaignProcessor owns campaign CRUD and outreach sending.
type CampaignProcessor struct {
	store  CampaignStore
	sender OutreachSender
	logger *observability.Logger
}

func New(store CampaignStore, sender OutreachSender, logger *observability.Logger) CampaignProcessor {
	return CampaignProcessor{
		store:  store,
		sender: sender,
		logger: logger,
	}
}

// CampaignSummary is a campaign row with its contact count.
type CampaignSummary struct {
	Campaign     store.Campaign `json:"campaign"`
	ContactCount int            `json:"contact_count"`
}

func (p *CampaignProcessor) CreateCampaign(ctx context.Context, userID uuid.UUID, name string) (store.Campaign, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Campaign{}, ErrEmptyName
	}
	campaign, err := p.store.CreateCampaign(ctx, userID, name)
	if err != nil {
		p.logger.Error(ctx, "failed to create campaign", err)
		return store.Campaign{}, err
	}
	return campaign, nil
}

func (p *CampaignProcessor) ListCampaigns(ctx context.Context, userID uuid.UUID) ([]CampaignSummary, error) {
	campaigns, err := p.store.ListCampaignsByUserID(ctx, userID)
	if err != nil {
		p.logger.Error(ctx, "failed to list campaigns", err)
		return nil, err
	}
	summaries := make([]CampaignSummary, 0, len(campaigns))
	for _, campaign := range campaigns {
		count, err := p.store.CountCampaignContacts(ctx, campaign.ID)
		if err != nil {
			p.logger.Error(ctx, "failed to count campaign contacts", err)
			return nil, err
		}
		summaries = append(summaries, CampaignSummary{Campaign: campaign, ContactCount: count})
	}
	return summaries, nil
}

func (p *CampaignProcessor) GetCampaignContacts(ctx context.Context, userID, campaignID uuid.UUID) ([]store.CampaignContactWithDetails, error) {
	if _, err := p.loadOwnedCampaign(ctx, userID, campaignID); err != nil {
		return nil, err
	}
	contacts, err := p.store.ListCampaignContacts(ctx, campaignID)
	if err != nil {
		p.logger.Error(ctx, "failed to list campaign contacts", err)
		return nil, err
	}
	return contacts, nil
}

func (p *CampaignProcessor) RemoveContact(ctx context.Context, userID, campaignID, contactID uuid.UUID) error {
	if _, err := p.loadOwnedCampaign(ctx, userID, campaignID); err != nil {
		return err
	}
	err := p.store.DeleteCampaignContact(ctx, campaignID, contactID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrContactNotFound
		}
		p.logger.Error(ctx, "failed to remove campaign contact", err)
		return err
	}
	return nil
}

// ClearContacts removes every contact from the campaign and returns how many
// links were deleted.
func (p *CampaignProcessor) ClearContacts(ctx context.Context, userID, campaignID uuid.UUID) (int, error) {
	if _, err := p.loadOwnedCampaign(ctx, userID, campaignID); err != nil {
		return 0, err
	}
	removed, err := p.store.DeleteAllCampaignContacts(ctx, campaignID)
	if err != nil {
		p.logger.Error(ctx, "failed to clear campaign contacts", err)
		return 0, err
	}
	return removed, nil
}

// SentOutreach reports a completed outreach send.
type SentOutreach struct {
	SentEmailID string    `json:"sent_email_id"`
	ContactID   uuid.UUID `json:"contact_id"`
}

// SendOutreach sends the outreach email to one campaign contact and records
// the provider email ID on the link. A contact that was already emailed can
// be emailed again; the link keeps the latest ID.
func (p *CampaignProcessor) SendOutreach(ctx context.Context, userID, campaignID, contactID uuid.UUID, subject, senderName string) (SentOutreach, error) {
	campaign, err := p.loadOwnedCampaign(ctx, userID, campaignID)
	if err != nil {
		return SentOutreach{}, err
	}

	if _, err := p.store.GetCampaignContact(ctx, campaignID, contactID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SentOutreach{}, ErrContactNotFound
		}
		p.logger.Error(ctx, "failed to load campaign contact", err)
		return SentOutreach{}, err
	}

	contact, err := p.store.GetContactByID(ctx, contactID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SentOutreach{}, ErrContactNotFound
		}
		p.logger.Error(ctx, "failed to load contact", err)
		return SentOutreach{}, err
	}
	if contact.Email == nil || *contact.Email == "" {
		return SentOutreach{}, ErrMissingEmail
	}

	data := email.TemplateData{
		ContactName:  contact.Name,
		CampaignName: campaign.Name,
		SenderName:   senderName,
	}
	if contact.Company != nil {
		data.Company = *contact.Company
	}
	if contact.Position != nil {
		data.Position = *contact.Position
	}

	sentEmailID, err := p.sender.SendOutreachEmail(ctx, *contact.Email, subject, data)
	if err != nil {
		p.logger.Error(ctx, "failed to send outreach email", err)
		return SentOutreach{}, err
	}

	if _, err := p.store.SetCampaignContactSentEmail(ctx, campaignID, contactID, sentEmailID); err != nil {
		// The email went out; losing the ID only degrades eviction ordering.
		p.logger.Error(ctx, "failed to record sent email id", err)
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "campaign_id", Value: campaignID},
		observability.Field{Key: "contact_id", Value: contactID},
		observability.Field{Key: "sent_email_id", Value: sentEmailID},
	)
	p.logger.Info(ctx, "outreach email sent")

	return SentOutreach{SentEmailID: sentEmailID, ContactID: contactID}, nil
}

func (p *CampaignProcessor) loadOwnedCampaign(ctx context.Context, userID, campaignID uuid.UUID) (store.Campaign, error) {
	campaign, err := p.store.GetCampaignByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Campaign{}, ErrCampaignNotFound
		}
		p.logger.Error(ctx, "failed to load campaign", err)
		return store.Campaign{}, err
	}
	if campaign.UserID != userID {
		return store.Campaign{}, ErrUnauthorized
	}
	return campaign, nil
}

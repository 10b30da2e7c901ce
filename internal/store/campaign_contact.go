package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CampaignContact links a Contact into a Campaign. SentEmailID is set once an
// outreach email has gone out; the cap eviction prefers rows where it is null.
type CampaignContact struct {
	ID          uuid.UUID `db:"id"`
	CampaignID  uuid.UUID `db:"campaign_id"`
	ContactID   uuid.UUID `db:"contact_id"`
	AddedAt     time.Time `db:"added_at"`
	SentEmailID *string   `db:"sent_email_id"`
}

// CampaignContactWithDetails joins the contact row onto the link for listings.
type CampaignContactWithDetails struct {
	CampaignContact
	ContactName  string  `db:"contact_name"`
	ContactEmail *string `db:"contact_email"`
}

const sqlGetCampaignContact = `
SELECT id, campaign_id, contact_id, added_at, sent_email_id
FROM campaign_contacts
WHERE campaign_id = $1 AND contact_id = $2
`

// GetCampaignContact retrieves the link between a campaign and a contact
func (s *Store) GetCampaignContact(ctx context.Context, campaignID, contactID uuid.UUID) (CampaignContact, error) {
	var link CampaignContact
	err := s.db.GetContext(ctx, &link, sqlGetCampaignContact, campaignID, contactID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CampaignContact{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get campaign contact", err)
		return CampaignContact{}, fmt.Errorf("failed to get campaign contact: %w", err)
	}
	return link, nil
}

const sqlCreateCampaignContact = `
INSERT INTO campaign_contacts (campaign_id, contact_id)
VALUES ($1, $2)
ON CONFLICT (campaign_id, contact_id) DO NOTHING
RETURNING id, campaign_id, contact_id, added_at, sent_email_id
`

// CreateCampaignContact links a contact into a campaign. A concurrent insert
// of the same pair surfaces as ErrAlreadyLinked rather than a constraint error.
var ErrAlreadyLinked = errors.New("contact already linked to campaign")

func (s *Store) CreateCampaignContact(ctx context.Context, campaignID, contactID uuid.UUID) (CampaignContact, error) {
	var link CampaignContact
	err := s.db.GetContext(ctx, &link, sqlCreateCampaignContact, campaignID, contactID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// ON CONFLICT DO NOTHING returns no row when the link exists
			return CampaignContact{}, ErrAlreadyLinked
		}
		s.logger.Error(ctx, "failed to create campaign contact", err)
		return CampaignContact{}, fmt.Errorf("failed to create campaign contact: %w", err)
	}
	return link, nil
}

const sqlCountCampaignContacts = `
SELECT COUNT(*) FROM campaign_contacts WHERE campaign_id = $1
`

// CountCampaignContacts returns the number of active links for a campaign
func (s *Store) CountCampaignContacts(ctx context.Context, campaignID uuid.UUID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, sqlCountCampaignContacts, campaignID)
	if err != nil {
		s.logger.Error(ctx, "failed to count campaign contacts", err)
		return 0, fmt.Errorf("failed to count campaign contacts: %w", err)
	}
	return count, nil
}

const sqlEvictOldestCampaignContact = `
DELETE FROM campaign_contacts
WHERE id = (
    SELECT id FROM campaign_contacts
    WHERE campaign_id = $1
    ORDER BY (sent_email_id IS NULL) DESC, added_at ASC
    LIMIT 1
)
RETURNING id, campaign_id, contact_id, added_at, sent_email_id
`

// EvictOldestCampaignContact removes the single oldest link from the
// campaign, preferring contacts that have not yet been emailed.
func (s *Store) EvictOldestCampaignContact(ctx context.Context, campaignID uuid.UUID) (CampaignContact, error) {
	var evicted CampaignContact
	err := s.db.GetContext(ctx, &evicted, sqlEvictOldestCampaignContact, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CampaignContact{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to evict oldest campaign contact", err)
		return CampaignContact{}, fmt.Errorf("failed to evict oldest campaign contact: %w", err)
	}
	return evicted, nil
}

const sqlListCampaignContacts = `
SELECT cc.id, cc.campaign_id, cc.contact_id, cc.added_at, cc.sent_email_id,
       c.name AS contact_name, c.email AS contact_email
FROM campaign_contacts cc
JOIN contacts c ON c.id = cc.contact_id AND c.deleted_at IS NULL
WHERE cc.campaign_id = $1
ORDER BY cc.added_at ASC
`

// ListCampaignContacts returns all links for a campaign with contact details
func (s *Store) ListCampaignContacts(ctx context.Context, campaignID uuid.UUID) ([]CampaignContactWithDetails, error) {
	var links []CampaignContactWithDetails
	err := s.db.SelectContext(ctx, &links, sqlListCampaignContacts, campaignID)
	if err != nil {
		s.logger.Error(ctx, "failed to list campaign contacts", err)
		return nil, fmt.Errorf("failed to list campaign contacts: %w", err)
	}
	return links, nil
}

const sqlDeleteCampaignContact = `
DELETE FROM campaign_contacts WHERE campaign_id = $1 AND contact_id = $2
`

// DeleteCampaignContact removes a single contact from a campaign
func (s *Store) DeleteCampaignContact(ctx context.Context, campaignID, contactID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, sqlDeleteCampaignContact, campaignID, contactID)
	if err != nil {
		s.logger.Error(ctx, "failed to delete campaign contact", err)
		return fmt.Errorf("failed to delete campaign contact: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

const sqlDeleteAllCampaignContacts = `
DELETE FROM campaign_contacts WHERE campaign_id = $1
`

// DeleteAllCampaignContacts clears every link from a campaign
func (s *Store) DeleteAllCampaignContacts(ctx context.Context, campaignID uuid.UUID) (int, error) {
	result, err := s.db.ExecContext(ctx, sqlDeleteAllCampaignContacts, campaignID)
	if err != nil {
		s.logger.Error(ctx, "failed to clear campaign contacts", err)
		return 0, fmt.Errorf("failed to clear campaign contacts: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return int(rows), nil
}

const sqlSetCampaignContactSentEmail = `
UPDATE campaign_contacts SET sent_email_id = $3
WHERE campaign_id = $1 AND contact_id = $2
RETURNING id, campaign_id, contact_id, added_at, sent_email_id
`

// SetCampaignContactSentEmail records the provider email ID after an outreach send
func (s *Store) SetCampaignContactSentEmail(ctx context.Context, campaignID, contactID uuid.UUID, sentEmailID string) (CampaignContact, error) {
	var link CampaignContact
	err := s.db.GetContext(ctx, &link, sqlSetCampaignContactSentEmail, campaignID, contactID, sentEmailID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CampaignContact{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to set sent email id", err)
		return CampaignContact{}, fmt.Errorf("failed to set sent email id: %w", err)
	}
	return link, nil
}

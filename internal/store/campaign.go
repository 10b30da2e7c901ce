package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	CampaignStatusDraft  = "draft"
	CampaignStatusActive = "active"
	CampaignStatusPaused = "paused"
)

// Campaign is an outreach campaign that contacts get linked into.
type Campaign struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	Name      string     `db:"name"`
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

const sqlCreateCampaign = `
INSERT INTO campaigns (user_id, name, status)
VALUES ($1, $2, $3)
RETURNING id, user_id, name, status, created_at, updated_at, deleted_at
`

// CreateCampaign creates a new campaign for a user
func (s *Store) CreateCampaign(ctx context.Context, userID uuid.UUID, name string) (Campaign, error) {
	var campaign Campaign
	err := s.db.GetContext(ctx, &campaign, sqlCreateCampaign, userID, name, CampaignStatusDraft)
	if err != nil {
		s.logger.Error(ctx, "failed to create campaign", err)
		return Campaign{}, fmt.Errorf("failed to create campaign: %w", err)
	}
	return campaign, nil
}

const sqlGetCampaignByID = `
SELECT id, user_id, name, status, created_at, updated_at, deleted_at
FROM campaigns
WHERE id = $1 AND deleted_at IS NULL
`

// GetCampaignByID retrieves a campaign by ID
func (s *Store) GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (Campaign, error) {
	var campaign Campaign
	err := s.db.GetContext(ctx, &campaign, sqlGetCampaignByID, campaignID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Campaign{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get campaign by id", err)
		return Campaign{}, fmt.Errorf("failed to get campaign by id: %w", err)
	}
	return campaign, nil
}

const sqlListCampaignsByUserID = `
SELECT id, user_id, name, status, created_at, updated_at, deleted_at
FROM campaigns
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
`

// ListCampaignsByUserID retrieves all campaigns owned by a user
func (s *Store) ListCampaignsByUserID(ctx context.Context, userID uuid.UUID) ([]Campaign, error) {
	var campaigns []Campaign
	err := s.db.SelectContext(ctx, &campaigns, sqlListCampaignsByUserID, userID)
	if err != nil {
		s.logger.Error(ctx, "failed to list campaigns", err)
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

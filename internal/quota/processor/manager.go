package processor

import (
	"context"
	"errors"
	"time"

	"lead-server/internal/observability"
	"lead-server/internal/store"

	"github.com/google/uuid"
)

// ErrQuotaExhausted is returned when an operation requires quota and none
// remains for the current period.
var ErrQuotaExhausted = errors.New("monthly enrichment quota exhausted")

// QuotaStore defines the database operations required by Manager
type QuotaStore interface {
	GetQuotaRecord(ctx context.Context, userID uuid.UUID, defaultLimit int) (store.QuotaRecord, error)
	ReserveQuota(ctx context.Context, userID uuid.UUID, count, defaultLimit int) (int, store.QuotaRecord, error)
	ReleaseQuota(ctx context.Context, userID uuid.UUID, count int) (store.QuotaRecord, error)
}

// Status is the client-facing view of a user's enrichment quota.
type Status struct {
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetDate time.Time `json:"reset_date"`
}

func statusFromRecord(record store.QuotaRecord) Status {
	return Status{
		Limit:     record.Limit,
		Used:      record.Used,
		Remaining: record.Remaining(),
		ResetDate: record.ResetDate,
	}
}

// Manager enforces the per-user monthly enrichment quota. All mutation goes
// through reserve/release pairs in the store so concurrent imports for the
// same user can never jointly overspend the limit.
type Manager struct {
	store        QuotaStore
	defaultLimit int
	logger       *observability.Logger
}

func NewManager(store QuotaStore, defaultLimit int, logger *observability.Logger) Manager {
	return Manager{
		store:        store,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// CheckQuota returns the user's current quota status without consuming anything.
func (m *Manager) CheckQuota(ctx context.Context, userID uuid.UUID) (Status, error) {
	record, err := m.store.GetQuotaRecord(ctx, userID, m.defaultLimit)
	if err != nil {
		m.logger.Error(ctx, "failed to get quota record", err)
		return Status{}, err
	}
	return statusFromRecord(record), nil
}

// AuthorizeEnrichment reserves up to requested units for the user and returns
// how many were actually granted. A grant of zero is not an error: callers
// decide per lead how to degrade when quota runs out mid-batch.
func (m *Manager) AuthorizeEnrichment(ctx context.Context, userID uuid.UUID, requested int) (int, Status, error) {
	if requested <= 0 {
		record, err := m.store.GetQuotaRecord(ctx, userID, m.defaultLimit)
		if err != nil {
			return 0, Status{}, err
		}
		return 0, statusFromRecord(record), nil
	}

	authorized, record, err := m.store.ReserveQuota(ctx, userID, requested, m.defaultLimit)
	if err != nil {
		m.logger.Error(ctx, "failed to reserve quota", err)
		return 0, Status{}, err
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "quota_requested", Value: requested},
		observability.Field{Key: "quota_authorized", Value: authorized},
	)
	m.logger.Info(ctx, "enrichment quota reserved")

	return authorized, statusFromRecord(record), nil
}

// ConsumeEnrichment settles a reservation: units authorized but not actually
// used flow back to the ledger. actual above authorized is clamped, never
// billed.
func (m *Manager) ConsumeEnrichment(ctx context.Context, userID uuid.UUID, authorized, actual int) (Status, error) {
	if actual > authorized {
		actual = authorized
	}
	if actual < 0 {
		actual = 0
	}

	unused := authorized - actual
	if unused == 0 {
		record, err := m.store.GetQuotaRecord(ctx, userID, m.defaultLimit)
		if err != nil {
			return Status{}, err
		}
		return statusFromRecord(record), nil
	}

	record, err := m.store.ReleaseQuota(ctx, userID, unused)
	if err != nil {
		m.logger.Error(ctx, "failed to release unused quota", err)
		return Status{}, err
	}
	return statusFromRecord(record), nil
}

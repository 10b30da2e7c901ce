package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuotaRecord is the per-user monthly enrichment ledger. Used is monotonically
// non-decreasing within a period and resets when ResetDate passes.
type QuotaRecord struct {
	UserID    uuid.UUID `db:"user_id"`
	Limit     int       `db:"quota_limit"`
	Used      int       `db:"used"`
	ResetDate time.Time `db:"reset_date"`
}

// Remaining returns limit - used, never negative.
func (q QuotaRecord) Remaining() int {
	remaining := q.Limit - q.Used
	if remaining < 0 {
		return 0
	}
	return remaining
}

func nextMonthlyReset(now time.Time) time.Time {
	year, month, _ := now.UTC().Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

const sqlEnsureQuotaRecord = `
INSERT INTO quota_records (user_id, quota_limit, used, reset_date)
VALUES ($1, $2, 0, $3)
ON CONFLICT (user_id) DO NOTHING
`

const sqlGetQuotaRecordForUpdate = `
SELECT user_id, quota_limit, used, reset_date
FROM quota_records
WHERE user_id = $1
FOR UPDATE
`

const sqlGetQuotaRecord = `
SELECT user_id, quota_limit, used, reset_date
FROM quota_records
WHERE user_id = $1
`

const sqlUpdateQuotaRecord = `
UPDATE quota_records SET used = $2, reset_date = $3 WHERE user_id = $1
`

// GetQuotaRecord returns the user's quota ledger, creating it with the given
// default limit on first touch and applying a lazy monthly reset.
func (s *Store) GetQuotaRecord(ctx context.Context, userID uuid.UUID, defaultLimit int) (QuotaRecord, error) {
	now := time.Now()
	if _, err := s.db.ExecContext(ctx, sqlEnsureQuotaRecord, userID, defaultLimit, nextMonthlyReset(now)); err != nil {
		s.logger.Error(ctx, "failed to ensure quota record", err)
		return QuotaRecord{}, fmt.Errorf("failed to ensure quota record: %w", err)
	}

	var record QuotaRecord
	err := s.db.GetContext(ctx, &record, sqlGetQuotaRecord, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuotaRecord{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get quota record", err)
		return QuotaRecord{}, fmt.Errorf("failed to get quota record: %w", err)
	}

	if !record.ResetDate.After(now) {
		record.Used = 0
		record.ResetDate = nextMonthlyReset(now)
		if _, err := s.db.ExecContext(ctx, sqlUpdateQuotaRecord, userID, record.Used, record.ResetDate); err != nil {
			s.logger.Error(ctx, "failed to apply quota reset", err)
			return QuotaRecord{}, fmt.Errorf("failed to apply quota reset: %w", err)
		}
	}

	return record, nil
}

// ReserveQuota atomically reserves up to count units for the user under a row
// lock, applying a lazy reset first if the period rolled over. It returns the
// number of units actually reserved and the resulting ledger. Two concurrent
// reservations for the same user serialize on the row lock, so they can never
// jointly overspend the limit.
func (s *Store) ReserveQuota(ctx context.Context, userID uuid.UUID, count, defaultLimit int) (int, QuotaRecord, error) {
	now := time.Now()
	if _, err := s.db.ExecContext(ctx, sqlEnsureQuotaRecord, userID, defaultLimit, nextMonthlyReset(now)); err != nil {
		s.logger.Error(ctx, "failed to ensure quota record", err)
		return 0, QuotaRecord{}, fmt.Errorf("failed to ensure quota record: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error(ctx, "failed to begin quota transaction", err)
		return 0, QuotaRecord{}, fmt.Errorf("failed to begin quota transaction: %w", err)
	}
	defer tx.Rollback()

	var record QuotaRecord
	if err := tx.GetContext(ctx, &record, sqlGetQuotaRecordForUpdate, userID); err != nil {
		s.logger.Error(ctx, "failed to lock quota record", err)
		return 0, QuotaRecord{}, fmt.Errorf("failed to lock quota record: %w", err)
	}

	if !record.ResetDate.After(now) {
		record.Used = 0
		record.ResetDate = nextMonthlyReset(now)
	}

	authorized := record.Remaining()
	if authorized > count {
		authorized = count
	}
	record.Used += authorized

	if _, err := tx.ExecContext(ctx, sqlUpdateQuotaRecord, userID, record.Used, record.ResetDate); err != nil {
		s.logger.Error(ctx, "failed to update quota record", err)
		return 0, QuotaRecord{}, fmt.Errorf("failed to update quota record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error(ctx, "failed to commit quota reservation", err)
		return 0, QuotaRecord{}, fmt.Errorf("failed to commit quota reservation: %w", err)
	}

	return authorized, record, nil
}

// ReleaseQuota returns unconsumed reserved units to the ledger. If the period
// rolled over since the reservation there is nothing to give back.
func (s *Store) ReleaseQuota(ctx context.Context, userID uuid.UUID, count int) (QuotaRecord, error) {
	if count < 0 {
		return QuotaRecord{}, fmt.Errorf("release count must be non-negative, got %d", count)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error(ctx, "failed to begin quota transaction", err)
		return QuotaRecord{}, fmt.Errorf("failed to begin quota transaction: %w", err)
	}
	defer tx.Rollback()

	var record QuotaRecord
	if err := tx.GetContext(ctx, &record, sqlGetQuotaRecordForUpdate, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuotaRecord{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to lock quota record", err)
		return QuotaRecord{}, fmt.Errorf("failed to lock quota record: %w", err)
	}

	now := time.Now()
	if !record.ResetDate.After(now) {
		record.Used = 0
		record.ResetDate = nextMonthlyReset(now)
	} else {
		record.Used -= count
		if record.Used < 0 {
			record.Used = 0
		}
	}

	if _, err := tx.ExecContext(ctx, sqlUpdateQuotaRecord, userID, record.Used, record.ResetDate); err != nil {
		s.logger.Error(ctx, "failed to update quota record", err)
		return QuotaRecord{}, fmt.Errorf("failed to update quota record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error(ctx, "failed to commit quota release", err)
		return QuotaRecord{}, fmt.Errorf("failed to commit quota release: %w", err)
	}

	return record, nil
}

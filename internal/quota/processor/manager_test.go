package processor

import (
	"context"
	"sync"
	"testing"
	"time"

	"lead-server/internal/observability"
	"lead-server/internal/store"

	"github.com/google/uuid"
)

// fakeQuotaStore mimics the row-locked ledger with a mutex.
type fakeQuotaStore struct {
	mu     sync.Mutex
	record store.QuotaRecord
}

func newFakeQuotaStore(limit, used int, resetDate time.Time) *fakeQuotaStore {
	return &fakeQuotaStore{
		record: store.QuotaRecord{
			UserID:    uuid.New(),
			Limit:     limit,
			Used:      used,
			ResetDate: resetDate,
		},
	}
}

func (f *fakeQuotaStore) GetQuotaRecord(ctx context.Context, userID uuid.UUID, defaultLimit int) (store.QuotaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyReset()
	return f.record, nil
}

func (f *fakeQuotaStore) ReserveQuota(ctx context.Context, userID uuid.UUID, count, defaultLimit int) (int, store.QuotaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyReset()
	authorized := f.record.Remaining()
	if authorized > count {
		authorized = count
	}
	f.record.Used += authorized
	return authorized, f.record, nil
}

func (f *fakeQuotaStore) ReleaseQuota(ctx context.Context, userID uuid.UUID, count int) (store.QuotaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record.Used -= count
	if f.record.Used < 0 {
		f.record.Used = 0
	}
	return f.record, nil
}

func (f *fakeQuotaStore) applyReset() {
	if !f.record.ResetDate.After(time.Now()) {
		f.record.Used = 0
		f.record.ResetDate = time.Now().AddDate(0, 1, 0)
	}
}

func testLogger(t *testing.T) *observability.Logger {
	t.Helper()
	return observability.NewLogger()
}

func future() time.Time {
	return time.Now().AddDate(0, 1, 0)
}

func TestCheckQuotaReportsRemaining(t *testing.T) {
	fake := newFakeQuotaStore(100, 37, future())
	m := NewManager(fake, 100, testLogger(t))

	status, err := m.CheckQuota(context.Background(), fake.record.UserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Remaining != 63 {
		t.Errorf("remaining = %d, want 63", status.Remaining)
	}
	if status.Used != 37 {
		t.Errorf("used = %d, want 37", status.Used)
	}
}

func TestCheckQuotaAppliesLazyReset(t *testing.T) {
	fake := newFakeQuotaStore(100, 80, time.Now().Add(-time.Hour))
	m := NewManager(fake, 100, testLogger(t))

	status, err := m.CheckQuota(context.Background(), fake.record.UserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Used != 0 {
		t.Errorf("used = %d, want 0 after reset", status.Used)
	}
	if status.Remaining != 100 {
		t.Errorf("remaining = %d, want 100 after reset", status.Remaining)
	}
}

func TestAuthorizeEnrichmentPartialGrant(t *testing.T) {
	fake := newFakeQuotaStore(100, 98, future())
	m := NewManager(fake, 100, testLogger(t))

	authorized, status, err := m.AuthorizeEnrichment(context.Background(), fake.record.UserID, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authorized != 2 {
		t.Errorf("authorized = %d, want 2", authorized)
	}
	if status.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", status.Remaining)
	}
}

func TestAuthorizeEnrichmentZeroGrantIsNotAnError(t *testing.T) {
	fake := newFakeQuotaStore(100, 100, future())
	m := NewManager(fake, 100, testLogger(t))

	authorized, _, err := m.AuthorizeEnrichment(context.Background(), fake.record.UserID, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authorized != 0 {
		t.Errorf("authorized = %d, want 0", authorized)
	}
}

func TestConsumeEnrichmentReleasesUnused(t *testing.T) {
	fake := newFakeQuotaStore(100, 0, future())
	m := NewManager(fake, 100, testLogger(t))
	userID := fake.record.UserID

	authorized, _, err := m.AuthorizeEnrichment(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authorized != 10 {
		t.Fatalf("authorized = %d, want 10", authorized)
	}

	// Only 6 enrichments actually happened; 4 units go back.
	status, err := m.ConsumeEnrichment(context.Background(), userID, authorized, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Used != 6 {
		t.Errorf("used = %d, want 6", status.Used)
	}
	if status.Remaining != 94 {
		t.Errorf("remaining = %d, want 94", status.Remaining)
	}
}

func TestConsumeEnrichmentClampsActual(t *testing.T) {
	fake := newFakeQuotaStore(100, 0, future())
	m := NewManager(fake, 100, testLogger(t))
	userID := fake.record.UserID

	authorized, _, _ := m.AuthorizeEnrichment(context.Background(), userID, 5)
	status, err := m.ConsumeEnrichment(context.Background(), userID, authorized, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Used != 5 {
		t.Errorf("used = %d, want 5 (actual clamped to authorized)", status.Used)
	}
}

func TestConcurrentAuthorizationsNeverOverspend(t *testing.T) {
	const limit = 50
	fake := newFakeQuotaStore(limit, 0, future())
	m := NewManager(fake, limit, testLogger(t))
	userID := fake.record.UserID

	var wg sync.WaitGroup
	var mu sync.Mutex
	totalAuthorized := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			authorized, _, err := m.AuthorizeEnrichment(context.Background(), userID, 7)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			mu.Lock()
			totalAuthorized += authorized
			mu.Unlock()
		}()
	}
	wg.Wait()

	if totalAuthorized > limit {
		t.Errorf("total authorized = %d, exceeds limit %d", totalAuthorized, limit)
	}
	if fake.record.Used > limit {
		t.Errorf("used = %d, exceeds limit %d", fake.record.Used, limit)
	}
	if totalAuthorized != limit {
		t.Errorf("total authorized = %d, want %d (20x7 requested)", totalAuthorized, limit)
	}
}

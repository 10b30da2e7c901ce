package processor

import (
	"context"
	"errors"
	"testing"

	"lead-server/internal/email"
	"lead-server/internal/observability"
	"lead-server/internal/store"

	"github.com/google/uuid"
)

type fakeCampaignStore struct {
	campaign store.Campaign
	contact  store.Contact
	link     *store.CampaignContact

	deletedContact  bool
	clearedContacts bool
	recordedEmailID string
}

func newFakeCampaignStore(userID uuid.UUID) *fakeCampaignStore {
	email := "ada@example.com"
	company := "Acme"
	f := &fakeCampaignStore{
		campaign: store.Campaign{
			ID:     uuid.New(),
			UserID: userID,
			Name:   "Q3 Outreach",
			Status: store.CampaignStatusDraft,
		},
		contact: store.Contact{
			ID:      uuid.New(),
			UserID:  userID,
			Name:    "Ada",
			Email:   &email,
			Company: &company,
		},
	}
	f.link = &store.CampaignContact{
		ID:         uuid.New(),
		CampaignID: f.campaign.ID,
		ContactID:  f.contact.ID,
	}
	return f
}

func (f *fakeCampaignStore) CreateCampaign(ctx context.Context, userID uuid.UUID, name string) (store.Campaign, error) {
	return store.Campaign{ID: uuid.New(), UserID: userID, Name: name, Status: store.CampaignStatusDraft}, nil
}

func (f *fakeCampaignStore) GetCampaignByID(ctx context.Context, campaignID uuid.UUID) (store.Campaign, error) {
	if campaignID != f.campaign.ID {
		return store.Campaign{}, store.ErrNotFound
	}
	return f.campaign, nil
}

func (f *fakeCampaignStore) ListCampaignsByUserID(ctx context.Context, userID uuid.UUID) ([]store.Campaign, error) {
	return []store.Campaign{f.campaign}, nil
}

func (f *fakeCampaignStore) ListCampaignContacts(ctx context.Context, campaignID uuid.UUID) ([]store.CampaignContactWithDetails, error) {
	return []store.CampaignContactWithDetails{{
		CampaignContact: *f.link,
		ContactName:     f.contact.Name,
		ContactEmail:    f.contact.Email,
	}}, nil
}

func (f *fakeCampaignStore) CountCampaignContacts(ctx context.Context, campaignID uuid.UUID) (int, error) {
	return 1, nil
}

func (f *fakeCampaignStore) GetCampaignContact(ctx context.Context, campaignID, contactID uuid.UUID) (store.CampaignContact, error) {
	if campaignID != f.campaign.ID || contactID != f.contact.ID {
		return store.CampaignContact{}, store.ErrNotFound
	}
	return *f.link, nil
}

func (f *fakeCampaignStore) GetContactByID(ctx context.Context, contactID uuid.UUID) (store.Contact, error) {
	if contactID != f.contact.ID {
		return store.Contact{}, store.ErrNotFound
	}
	return f.contact, nil
}

func (f *fakeCampaignStore) DeleteCampaignContact(ctx context.Context, campaignID, contactID uuid.UUID) error {
	if contactID != f.contact.ID {
		return store.ErrNotFound
	}
	f.deletedContact = true
	return nil
}

func (f *fakeCampaignStore) DeleteAllCampaignContacts(ctx context.Context, campaignID uuid.UUID) (int, error) {
	f.clearedContacts = true
	return 1, nil
}

func (f *fakeCampaignStore) SetCampaignContactSentEmail(ctx context.Context, campaignID, contactID uuid.UUID, sentEmailID string) (store.CampaignContact, error) {
	f.recordedEmailID = sentEmailID
	link := *f.link
	link.SentEmailID = &sentEmailID
	return link, nil
}

type fakeSender struct {
	sentTo   string
	lastData email.TemplateData
	err      error
}

func (f *fakeSender) SendOutreachEmail(ctx context.Context, to, subject string, data email.TemplateData) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sentTo = to
	f.lastData = data
	return "email-123", nil
}

func testLogger(t *testing.T) *observability.Logger {
	t.Helper()
	return observability.NewLogger()
}

func TestCreateCampaignRejectsEmptyName(t *testing.T) {
	userID := uuid.New()
	p := New(newFakeCampaignStore(userID), &fakeSender{}, testLogger(t))

	_, err := p.CreateCampaign(context.Background(), userID, "   ")
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}
}

func TestGetCampaignContactsEnforcesOwnership(t *testing.T) {
	owner := uuid.New()
	fake := newFakeCampaignStore(owner)
	p := New(fake, &fakeSender{}, testLogger(t))

	_, err := p.GetCampaignContacts(context.Background(), uuid.New(), fake.campaign.ID)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}

	contacts, err := p.GetCampaignContacts(context.Background(), owner, fake.campaign.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contacts) != 1 {
		t.Errorf("contacts = %d, want 1", len(contacts))
	}
}

func TestRemoveContactUnknownContact(t *testing.T) {
	userID := uuid.New()
	fake := newFakeCampaignStore(userID)
	p := New(fake, &fakeSender{}, testLogger(t))

	err := p.RemoveContact(context.Background(), userID, fake.campaign.ID, uuid.New())
	if !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("err = %v, want ErrContactNotFound", err)
	}

	if err := p.RemoveContact(context.Background(), userID, fake.campaign.ID, fake.contact.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fake.deletedContact {
		t.Error("contact was not deleted")
	}
}

func TestSendOutreachRecordsEmailID(t *testing.T) {
	userID := uuid.New()
	fake := newFakeCampaignStore(userID)
	sender := &fakeSender{}
	p := New(fake, sender, testLogger(t))

	sent, err := p.SendOutreach(context.Background(), userID, fake.campaign.ID, fake.contact.ID, "Quick question", "Sam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent.SentEmailID != "email-123" {
		t.Errorf("sent email id = %q, want email-123", sent.SentEmailID)
	}
	if fake.recordedEmailID != "email-123" {
		t.Errorf("recorded email id = %q, want email-123", fake.recordedEmailID)
	}
	if sender.sentTo != *fake.contact.Email {
		t.Errorf("sent to = %q, want %q", sender.sentTo, *fake.contact.Email)
	}
	if sender.lastData.CampaignName != fake.campaign.Name {
		t.Errorf("campaign name in template = %q", sender.lastData.CampaignName)
	}
}

func TestSendOutreachRequiresEmail(t *testing.T) {
	userID := uuid.New()
	fake := newFakeCampaignStore(userID)
	fake.contact.Email = nil
	p := New(fake, &fakeSender{}, testLogger(t))

	_, err := p.SendOutreach(context.Background(), userID, fake.campaign.ID, fake.contact.ID, "Hello", "Sam")
	if !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("err = %v, want ErrMissingEmail", err)
	}
}

func TestSendOutreachPropagatesSenderFailure(t *testing.T) {
	userID := uuid.New()
	fake := newFakeCampaignStore(userID)
	sender := &fakeSender{err: errors.New("resend: rate limited")}
	p := New(fake, sender, testLogger(t))

	_, err := p.SendOutreach(context.Background(), userID, fake.campaign.ID, fake.contact.ID, "Hello", "Sam")
	if err == nil {
		t.Fatal("expected error from sender")
	}
	if fake.recordedEmailID != "" {
		t.Errorf("email id recorded despite send failure: %q", fake.recordedEmailID)
	}
}

package email

import (
	"context"
	"errors"
	"testing"

	"lead-server/internal/observability"
)

func TestSendTemplatedEmailRejectsInvalidAddress(t *testing.T) {
	s := New(nil, "noreply@example.com", observability.NewLogger())

	_, err := s.SendTemplatedEmail(context.Background(), "not-an-address", "Hello", "outreach", TemplateData{})
	if !errors.Is(err, ErrInvalidEmailAddress) {
		t.Fatalf("err = %v, want ErrInvalidEmailAddress", err)
	}
}

func TestSendTemplatedEmailRejectsUnknownTemplate(t *testing.T) {
	s := New(nil, "noreply@example.com", observability.NewLogger())

	_, err := s.SendTemplatedEmail(context.Background(), "ada@example.com", "Hello", "missing", TemplateData{})
	if !errors.Is(err, ErrEmptyTemplate) {
		t.Fatalf("err = %v, want ErrEmptyTemplate", err)
	}
}

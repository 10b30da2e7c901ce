package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"text/template"

	mailclient "lead-server/internal/clients/mail"
	"lead-server/internal/observability"
)

var (
	ErrInvalidEmailAddress = errors.New("invalid email address")
	ErrSendingEmail        = errors.New("error sending email")
	ErrEmptyTemplate       = errors.New("email template is empty")
)

// EmailService handles sending emails
type EmailService struct {
	mailClient    *mailclient.ResendClient
	logger        *observability.Logger
	defaultSender string
	templates     map[string]string
}

// TemplateData represents the data that can be used in templates
type TemplateData struct {
	ContactName  string
	Company      string
	Position     string
	CampaignName string
	SenderName   string
}

// New creates a new EmailService
func New(mailClient *mailclient.ResendClient, defaultSender string, logger *observability.Logger) *EmailService {
	return &EmailService{
		mailClient:    mailClient,
		logger:        logger,
		defaultSender: defaultSender,
		templates: map[string]string{
			"outreach": `
			<html>
				<body>
					<p>Hi {{.ContactName}},</p>
					<p>I came across your profile{{if .Company}} at {{.Company}}{{end}} and thought the {{.CampaignName}} campaign might be relevant to you{{if .Position}} as a {{.Position}}{{end}}.</p>
					<p>Would you be open to a short conversation?</p>
					<p>Best,<br/>{{.SenderName}}</p>
				</body>
			</html>
			`,
		},
	}
}

// SendTemplatedEmail renders the named template and sends it to the recipient.
// It returns the provider's email ID for delivery tracking.
func (s *EmailService) SendTemplatedEmail(ctx context.Context, to, subject, templateName string, data TemplateData) (string, error) {
	if _, err := mail.ParseAddress(to); err != nil {
		return "", ErrInvalidEmailAddress
	}

	tmpl, ok := s.templates[templateName]
	if !ok || tmpl == "" {
		return "", ErrEmptyTemplate
	}

	parsed, err := template.New(templateName).Parse(tmpl)
	if err != nil {
		s.logger.Error(ctx, "failed to parse email template", err)
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := parsed.Execute(&body, data); err != nil {
		s.logger.Error(ctx, "failed to render email template", err)
		return "", fmt.Errorf("failed to render email template: %w", err)
	}

	emailID, err := s.mailClient.SendEmail(ctx, s.defaultSender, to, subject, body.String())
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrSendingEmail, err.Error())
	}
	return emailID, nil
}

// SendOutreachEmail sends the outreach template to a campaign contact.
func (s *EmailService) SendOutreachEmail(ctx context.Context, to, subject string, data TemplateData) (string, error) {
	return s.SendTemplatedEmail(ctx, to, subject, "outreach", data)
}

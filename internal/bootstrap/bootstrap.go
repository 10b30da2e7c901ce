package bootstrap

import (
	"context"
	"fmt"

	"lead-server/internal/config"
	"lead-server/internal/observability"
	"lead-server/internal/store"

	"lead-server/internal/auth/handler"
	"lead-server/internal/auth/processor"
	campaignsHandler "lead-server/internal/campaigns/handler"
	campaignsProcessor "lead-server/internal/campaigns/processor"
	"lead-server/internal/clients/aiclassifier"
	"lead-server/internal/clients/leadprovider"
	"lead-server/internal/clients/mail"
	discoveryHandler "lead-server/internal/discovery/handler"
	discoveryProcessor "lead-server/internal/discovery/processor"
	"lead-server/internal/email"
	importerHandler "lead-server/internal/importer/handler"
	importerProcessor "lead-server/internal/importer/processor"
	quotaHandler "lead-server/internal/quota/handler"
	quotaProcessor "lead-server/internal/quota/processor"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store  store.Store
	Logger *observability.Logger

	// Handlers
	AuthHandler      handler.Handler
	DiscoveryHandler discoveryHandler.Handler
	QuotaHandler     quotaHandler.Handler
	ImporterHandler  importerHandler.Handler
	CampaignsHandler campaignsHandler.Handler
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger: logger,
	}

	// Initialize database store
	connectionString := cfg.Database.ConnectionString()
	var err error
	deps.Store, err = store.New(connectionString, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize clients
	classifier, err := aiclassifier.New(cfg.Services.OpenAIAPIKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ai classifier: %w", err)
	}

	providerClient, err := leadprovider.New(cfg.Services.LeadProviderBaseURL, cfg.Services.LeadProviderAPIKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create lead provider client: %w", err)
	}

	mailClient, err := mail.NewResendClient(cfg.Services.ResendAPIKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create resend client: %w", err)
	}

	// Initialize email service
	emailService := email.New(mailClient, cfg.Services.DefaultEmailSender, logger)

	// Initialize auth processor and handler
	authProc := processor.New(&deps.Store, cfg.Auth.JWTSecret, logger)
	deps.AuthHandler = handler.New(authProc, logger)

	// Initialize discovery processor and handler
	discoveryProc := discoveryProcessor.New(classifier, providerClient, discoveryProcessor.DefaultLadderPolicy(), logger)
	deps.DiscoveryHandler = discoveryHandler.New(discoveryProc, logger)

	// Initialize quota manager and handler
	quotaManager := quotaProcessor.NewManager(&deps.Store, cfg.Quota.MonthlyEnrichmentLimit, logger)
	deps.QuotaHandler = quotaHandler.New(quotaManager, logger)

	// Initialize importer processor and handler
	importerProc := importerProcessor.New(&deps.Store, &quotaManager, providerClient, cfg.WorkerPool.EnrichmentWorkers, logger)
	deps.ImporterHandler = importerHandler.New(importerProc, logger)

	// Initialize campaigns processor and handler
	campaignsProc := campaignsProcessor.New(&deps.Store, emailService, logger)
	deps.CampaignsHandler = campaignsHandler.New(campaignsProc, logger)

	return deps, nil
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	if db := d.Store.DB(); db != nil {
		db.Close()
	}
}

package apierrors

import (
	"errors"
	"strings"

	authProcessor "lead-server/internal/auth/processor"
	campaignsProcessor "lead-server/internal/campaigns/processor"
	discoveryProcessor "lead-server/internal/discovery/processor"
	importerProcessor "lead-server/internal/importer/processor"
	quotaProcessor "lead-server/internal/quota/processor"
	"lead-server/internal/store"
)

// MapError converts domain/processor errors to APIErrors.
// This function centralizes all error mapping logic to ensure consistent
// error responses across the entire API.
//
// If the error is already an APIError, it returns it as-is.
// If the error is a known domain error, it maps it to an appropriate APIError.
// If the error is unknown, it returns a sanitized InternalError (500).
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	// Auth processor errors
	case errors.Is(err, authProcessor.ErrEmailAlreadyExists):
		return Conflict(CodeEmailExists, "Email already exists")

	case errors.Is(err, authProcessor.ErrEmailDoesNotExist):
		return NotFound(CodeEmailNotFound, "Email does not exist")

	case errors.Is(err, authProcessor.ErrIncorrectPassword):
		return Unauthorized("Invalid email or password")

	case errors.Is(err, authProcessor.ErrUserNotFound):
		return NotFound(CodeUserNotFound, "User not found")

	case errors.Is(err, authProcessor.ErrInvalidToken):
		return Unauthorized("Invalid or expired token")

	// Discovery processor errors
	case errors.Is(err, discoveryProcessor.ErrEmptyFilters):
		return BadRequest(CodeEmptyFilters, "At least one search filter is required")

	case errors.Is(err, discoveryProcessor.ErrEmptyQuery):
		return BadRequest(CodeEmptyQuery, "Search query must not be empty")

	case errors.Is(err, discoveryProcessor.ErrProviderUnavailable):
		return ServiceUnavailable(CodeLeadProviderError, "Lead provider is temporarily unavailable. Please try again later.", err)

	// Importer processor errors
	case errors.Is(err, importerProcessor.ErrCampaignNotFound):
		return NotFound(CodeCampaignNotFound, "Campaign not found")

	case errors.Is(err, importerProcessor.ErrUnauthorized):
		return Forbidden("You do not have access to this campaign")

	case errors.Is(err, importerProcessor.ErrNoLeads):
		return BadRequest(CodeInvalidInput, "At least one lead is required")

	// Campaigns processor errors
	case errors.Is(err, campaignsProcessor.ErrCampaignNotFound):
		return NotFound(CodeCampaignNotFound, "Campaign not found")

	case errors.Is(err, campaignsProcessor.ErrUnauthorized):
		return Forbidden("You do not have access to this campaign")

	case errors.Is(err, campaignsProcessor.ErrContactNotFound):
		return NotFound(CodeContactNotFound, "Contact not found")

	case errors.Is(err, campaignsProcessor.ErrEmptyName):
		return BadRequest(CodeInvalidInput, "Campaign name is required")

	case errors.Is(err, campaignsProcessor.ErrMissingEmail):
		return BadRequest(CodeInvalidInput, "Contact has no email address")

	// Quota errors
	case errors.Is(err, quotaProcessor.ErrQuotaExhausted):
		return TooManyRequests(CodeQuotaExhausted, "Monthly enrichment quota exhausted")

	// Store errors
	case errors.Is(err, store.ErrNotFound):
		return NotFound(CodeNotFound, "Resource not found")

	default:
		return mapExternalServiceError(err)
	}
}

// mapExternalServiceError attempts to identify external service errors
// and map them to appropriate service-specific error responses.
func mapExternalServiceError(err error) *APIError {
	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "resend") || strings.Contains(errMsg, "email service") {
		return ServiceUnavailable(
			CodeEmailServiceError,
			"Email service is temporarily unavailable. Please try again later.",
			err,
		)
	}

	if strings.Contains(errMsg, "openai") || strings.Contains(errMsg, "ai service") {
		return ServiceUnavailable(
			CodeAIServiceError,
			"AI service is temporarily unavailable. Please try again later.",
			err,
		)
	}

	return InternalError(err)
}

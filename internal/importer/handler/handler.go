package handler

import (
	"net/http"

	"lead-server/internal/apierrors"
	authHandler "lead-server/internal/auth/handler"
	"lead-server/internal/importer/processor"
	"lead-server/internal/leads"
	"lead-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	importProcessor processor.ImportProcessor
	logger          *observability.Logger
}

func New(importProcessor processor.ImportProcessor, logger *observability.Logger) Handler {
	return Handler{importProcessor: importProcessor, logger: logger}
}

type ImportRequest struct {
	CampaignID uuid.UUID    `json:"campaign_id" binding:"required"`
	Leads      []leads.Lead `json:"leads" binding:"required,min=1"`
}

// HandleImportLeads imports a batch of search results into a campaign.
func (h *Handler) HandleImportLeads(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := authHandler.UserIDFromContext(c)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	result, err := h.importProcessor.ImportLeads(ctx, userID, req.CampaignID, req.Leads)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

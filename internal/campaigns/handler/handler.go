package handler

import (
	"net/http"

	"lead-server/internal/apierrors"
	authHandler "lead-server/internal/auth/handler"
	"lead-server/internal/campaigns/processor"
	"lead-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	campaignProcessor processor.CampaignProcessor
	logger            *observability.Logger
}

func New(campaignProcessor processor.CampaignProcessor, logger *observability.Logger) Handler {
	return Handler{campaignProcessor: campaignProcessor, logger: logger}
}

type CreateCampaignRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) HandleCreateCampaign(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := authHandler.UserIDFromContext(c)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	campaign, err := h.campaignProcessor.CreateCampaign(ctx, userID, req.Name)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

func (h *Handler) HandleListCampaigns(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := authHandler.UserIDFromContext(c)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	campaigns, err := h.campaignProcessor.ListCampaigns(ctx, userID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (h *Handler) HandleGetCampaignContacts(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := authHandler.UserIDFromContext(c)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid campaign ID"))
		return
	}

	contacts, err := h.campaignProcessor.GetCampaignContacts(ctx, userID, campaignID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

func (h *Handler) HandleRemoveContact(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := authHandler.UserIDFromContext(c)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid campaign ID"))
		return
	}
	contactID, err := uuid.Parse(c.Param("contactID"))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid contact ID"))
		return
	}

	if err := h.campaignProcessor.RemoveContact(ctx, userID, campaignID, contactID); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) HandleClearContacts(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := authHandler.UserIDFromContext(c)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid campaign ID"))
		return
	}

	removed, err := h.campaignProcessor.ClearContacts(ctx, userID, campaignID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

type SendOutreachRequest struct {
	ContactID  uuid.UUID `json:"contact_id" binding:"required"`
	Subject    string    `json:"subject" binding:"required"`
	SenderName string    `json:"sender_name" binding:"required"`
}

func (h *Handler) HandleSendOutreach(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := authHandler.UserIDFromContext(c)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid campaign ID"))
		return
	}

	var req SendOutreachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	sent, err := h.campaignProcessor.SendOutreach(ctx, userID, campaignID, req.ContactID, req.Subject, req.SenderName)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, sent)
}

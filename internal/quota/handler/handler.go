package handler

import (
	"net/http"

	"lead-server/internal/apierrors"
	authHandler "lead-server/internal/auth/handler"
	"lead-server/internal/observability"
	"lead-server/internal/quota/processor"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	manager processor.Manager
	logger  *observability.Logger
}

func New(manager processor.Manager, logger *observability.Logger) Handler {
	return Handler{manager: manager, logger: logger}
}

// HandleGetQuota returns the caller's current enrichment quota status.
func (h *Handler) HandleGetQuota(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := authHandler.UserIDFromContext(c)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	status, err := h.manager.CheckQuota(ctx, userID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

package handler

import (
	"net/http"

	"lead-server/internal/apierrors"
	authHandler "lead-server/internal/auth/handler"
	"lead-server/internal/discovery/processor"
	"lead-server/internal/leads"
	"lead-server/internal/observability"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	discoveryProcessor processor.DiscoveryProcessor
	logger             *observability.Logger
}

func New(discoveryProcessor processor.DiscoveryProcessor, logger *observability.Logger) Handler {
	return Handler{discoveryProcessor: discoveryProcessor, logger: logger}
}

type SearchRequest struct {
	Query   string `json:"query" binding:"required"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

type SearchResponse struct {
	Interpretation processor.Interpretation `json:"interpretation"`
	processor.SearchResult
}

// HandleSearch interprets a free-text query and runs the search.
func (h *Handler) HandleSearch(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := authHandler.UserIDFromContext(c); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	interpretation, result, err := h.discoveryProcessor.SearchByQuery(ctx, req.Query, req.Page, req.PerPage)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, SearchResponse{
		Interpretation: interpretation,
		SearchResult:   result,
	})
}

type FilterSearchRequest struct {
	Filters leads.ActiveFilters `json:"filters" binding:"required"`
	Page    int                 `json:"page"`
	PerPage int                 `json:"per_page"`
}

// HandleFilterSearch runs a search with explicit structured filters, as sent
// by clients refining a previous interpretation.
func (h *Handler) HandleFilterSearch(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := authHandler.UserIDFromContext(c); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	var req FilterSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	result, err := h.discoveryProcessor.Search(ctx, req.Filters, req.Page, req.PerPage, processor.SearchOptions{})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

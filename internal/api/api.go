package api

import (
	"net/http"

	authHandler "lead-server/internal/auth/handler"
	campaignsHandler "lead-server/internal/campaigns/handler"
	discoveryHandler "lead-server/internal/discovery/handler"
	importerHandler "lead-server/internal/importer/handler"
	quotaHandler "lead-server/internal/quota/handler"

	"github.com/gin-gonic/gin"
)

type API struct {
	router           *gin.RouterGroup
	authHandler      authHandler.Handler
	discoveryHandler discoveryHandler.Handler
	quotaHandler     quotaHandler.Handler
	importerHandler  importerHandler.Handler
	campaignsHandler campaignsHandler.Handler
}

func New(
	router *gin.RouterGroup,
	auth authHandler.Handler,
	discovery discoveryHandler.Handler,
	quota quotaHandler.Handler,
	importer importerHandler.Handler,
	campaigns campaignsHandler.Handler,
) API {
	return API{
		router:           router,
		authHandler:      auth,
		discoveryHandler: discovery,
		quotaHandler:     quota,
		importerHandler:  importer,
		campaignsHandler: campaigns,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	apiGroup := a.router.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		authGroup.POST("/signup/email", a.authHandler.HandleEmailSignup)
		authGroup.POST("/login/email", a.authHandler.HandleEmailLogin)
	}
	protectedGroup := apiGroup.Group("/protected", a.authHandler.HandleJWTMiddleware)
	{
		protectedGroup.GET("/user", a.authHandler.GetUserInfo)

		protectedGroup.POST("/search", a.discoveryHandler.HandleSearch)
		protectedGroup.POST("/search/filters", a.discoveryHandler.HandleFilterSearch)

		protectedGroup.GET("/quota", a.quotaHandler.HandleGetQuota)
		protectedGroup.POST("/import", a.importerHandler.HandleImportLeads)

		protectedGroup.POST("/campaigns", a.campaignsHandler.HandleCreateCampaign)
		protectedGroup.GET("/campaigns", a.campaignsHandler.HandleListCampaigns)
		protectedGroup.GET("/campaigns/:campaignID/contacts", a.campaignsHandler.HandleGetCampaignContacts)
		protectedGroup.DELETE("/campaigns/:campaignID/contacts", a.campaignsHandler.HandleClearContacts)
		protectedGroup.DELETE("/campaigns/:campaignID/contacts/:contactID", a.campaignsHandler.HandleRemoveContact)
		protectedGroup.POST("/campaigns/:campaignID/send", a.campaignsHandler.HandleSendOutreach)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}

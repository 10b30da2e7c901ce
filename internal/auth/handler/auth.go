package handler

import (
	"net/http"
	"strings"

	"lead-server/internal/apierrors"
	"lead-server/internal/auth/processor"
	"lead-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	authProcessor processor.AuthProcessor
	logger        *observability.Logger
}

type EmailSignupRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type EmailLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func New(authProcessor processor.AuthProcessor, logger *observability.Logger) Handler {
	return Handler{authProcessor: authProcessor, logger: logger}
}

func (h *Handler) HandleEmailSignup(c *gin.Context) {
	var req EmailSignupRequest
	ctx := c.Request.Context()
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}
	signedUpUser, err := h.authProcessor.Signup(ctx, req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, signedUpUser)
}

func (h *Handler) HandleEmailLogin(c *gin.Context) {
	var req EmailLoginRequest
	ctx := c.Request.Context()
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}
	token, err := h.authProcessor.Login(ctx, req.Email, req.Password)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) HandleJWTMiddleware(c *gin.Context) {
	ctx := c.Request.Context()
	tokenHeader := c.GetHeader("Authorization")

	if tokenHeader == "" || !strings.HasPrefix(tokenHeader, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token is missing or invalid"})
		c.Abort()
		return
	}

	tokenString := strings.TrimPrefix(tokenHeader, "Bearer ")

	claims, err := h.authProcessor.ValidateJWTToken(ctx, tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		c.Abort()
		return
	}
	sub, err := claims.GetSubject()
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
		c.Abort()
		return
	}
	c.Set("User-ID", sub)
	c.Next()
}

func (h *Handler) GetUserInfo(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := UserIDFromContext(c)
	if err != nil {
		h.logger.Error(ctx, "failed to get user from context", err)
		apierrors.RespondWithError(c, err)
		return
	}
	user, err := h.authProcessor.GetUserByID(ctx, userID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UserIDFromContext reads the authenticated user's ID set by HandleJWTMiddleware.
func UserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	user, ok := c.Get("User-ID")
	if !ok {
		return uuid.Nil, apierrors.Unauthorized("Authentication required")
	}
	sub, ok := user.(string)
	if !ok {
		return uuid.Nil, apierrors.Unauthorized("Authentication required")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apierrors.Unauthorized("Authentication required")
	}
	return userID, nil
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	domainerrors "stark-ops.backend/internal/domain/errors"
	"stark-ops.backend/internal/interfaces/http/response"
	"stark-ops.backend/pkg/crypto"
	"stark-ops.backend/pkg/jwt"
)

// AuthHandler exchanges API keys for short-lived session tokens
type AuthHandler struct {
	jwtService *jwt.Service
	apiKeyHash string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtService *jwt.Service, apiKeyHash string) *AuthHandler {
	return &AuthHandler{jwtService: jwtService, apiKeyHash: apiKeyHash}
}

type tokenRequest struct {
	APIKey string `json:"apiKey" binding:"required"`
}

// IssueToken exchanges a valid API key for a session token
// POST /api/v1/auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if h.apiKeyHash == "" || !crypto.CheckAPIKey(req.APIKey, h.apiKeyHash) {
		response.Error(c, domainerrors.Unauthorized("Invalid API key"))
		return
	}

	token, err := h.jwtService.GenerateToken(uuid.New(), "api-key")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token})
}

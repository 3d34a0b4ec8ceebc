package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"stark-ops.backend/pkg/crypto"
	"stark-ops.backend/pkg/jwt"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// APIKeyHeader carries the raw API key for direct authentication
	APIKeyHeader = "X-API-Key"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// KeyIDKey is the context key for the authenticated key ID
	KeyIDKey = "keyId"
	// KeyNameKey is the context key for the authenticated key name
	KeyNameKey = "keyName"
)

// AuthMiddleware authenticates requests either by raw API key or by a
// session token previously exchanged for one. An empty apiKeyHash disables
// API key auth entirely.
func AuthMiddleware(jwtService *jwt.Service, apiKeyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader(APIKeyHeader); key != "" {
			if apiKeyHash == "" || !crypto.CheckAPIKey(key, apiKeyHash) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid API key",
				})
				return
			}
			c.Set(KeyNameKey, "api-key")
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			if err == jwt.ErrExpiredToken {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Token has expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(KeyIDKey, claims.KeyID)
		c.Set(KeyNameKey, claims.Name)
		c.Next()
	}
}

// GetKeyID gets the authenticated key ID from context
func GetKeyID(c *gin.Context) (uuid.UUID, bool) {
	keyID, exists := c.Get(KeyIDKey)
	if !exists {
		return uuid.Nil, false
	}
	return keyID.(uuid.UUID), true
}

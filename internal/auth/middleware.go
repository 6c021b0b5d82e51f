package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kone/bibliotheque/internal/entities"
)

// Context keys for authenticated request data
const (
	ContextKeyClaims = "auth_claims"
	ContextKeyUserID = "auth_user_id"
)

// Middleware guards routes behind bearer-token verification.
type Middleware struct {
	service *Service
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuth rejects requests without a valid "Authorization: Bearer"
// header. A missing or malformed header is 401; a token that fails
// verification is 403.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token manquant",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Format du token invalide",
			})
			return
		}

		claims, err := m.service.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Token invalide ou expiré",
			})
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// RequireAdmin rejects authenticated requests whose claims lack the
// administrator role. Must run after RequireAuth.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.Role != entities.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Accès réservé aux administrateurs",
			})
			return
		}
		c.Next()
	}
}

// GetClaims extracts the verified claims from the gin context, or nil
// when the request was not authenticated.
func GetClaims(c *gin.Context) *Claims {
	value, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := value.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetUserID extracts the authenticated user's ID, 0 when anonymous.
func GetUserID(c *gin.Context) uint {
	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0
	}
	id, ok := value.(uint)
	if !ok {
		return 0
	}
	return id
}

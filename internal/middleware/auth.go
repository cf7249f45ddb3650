package middleware

import (
	"context"
	"net/http"
	"strings"

	"hospital-admission/internal/models"
	"hospital-admission/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// APIKeyValidator resolves a plain API key to its stored record
type APIKeyValidator interface {
	ValidateAPIKey(ctx context.Context, plainKey string) (*models.APIKey, error)
}

// AuthMiddleware validates the bearer credential in the Authorization header:
// a JWT access token, or an API key when keys is non-nil. API key requests
// run with the service role on behalf of the staff member who created the key.
func AuthMiddleware(keys APIKeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>")
			c.Abort()
			return
		}

		if keys != nil && strings.HasPrefix(token, models.APIKeyPrefix) {
			key, err := keys.ValidateAPIKey(c.Request.Context(), token)
			if err != nil {
				utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired API key")
				c.Abort()
				return
			}
			if key.CreatedBy != nil {
				c.Set(ContextUserID, *key.CreatedBy)
			}
			c.Set(ContextRole, models.RoleService)
			c.Next()
			return
		}

		claims, err := utils.ValidateAccessToken(token)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// RequireRole lets the request through only when the authenticated staff
// member has one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient role for this action")
		c.Abort()
	}
}

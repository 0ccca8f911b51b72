package middleware

import (
	"net/http"
	"strings"

	"weighbridge_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the operator bearer token and stamps the operator
// identity into the gin context for downstream handlers.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format. Use Bearer <token>"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			c.Abort()
			return
		}

		c.Set("operatorID", claims.OperatorID)
		c.Set("operatorName", claims.FullName)
		c.Set("operatorRole", claims.Role)

		c.Next()
	}
}

// RoleAuthMiddleware gates a route on the operator role stamped by
// AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("operatorRole")
		if role == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Operator role not found in token claims"})
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if strings.EqualFold(role, allowed) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role. Required: " + strings.Join(allowedRoles, ", ")})
		c.Abort()
	}
}

// AllowAll is a pass-through used in place of role gates on edge deployments
// that run with AUTH_REQUIRED=false.
func AllowAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

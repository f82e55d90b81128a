// api/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/gatekeeper/api/authorizer"
	logger "github.com/dev-mohitbeniwal/gatekeeper/api/logging"
)

// BearerAuth gates every route behind the authorizer. The verdict is
// produced strictly before the handler runs; a denied request never
// reaches a mutating operation.
func BearerAuth(authz *authorizer.Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := c.GetHeader("Authorization")
		if credential == "" {
			logger.Warn("No Authorization token provided",
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		op := authorizer.Operation{
			Method: c.Request.Method,
			UserID: c.Param("id"),
		}

		decision := authz.Authorize(c, credential, op)
		if !decision.Allowed() {
			// No principal means the credential itself failed
			// verification; an attached principal means the caller
			// lacked the required privilege.
			if decision.Principal == nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			} else {
				logger.Warn("Request denied by authorizer",
					zap.String("principal", decision.Principal.ID),
					zap.String("method", op.Method),
					zap.String("userID", op.UserID))
				c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			}
			c.Abort()
			return
		}

		c.Set("principal", decision.Principal)
		c.Set("requestingUserID", decision.Principal.ID)
		c.Set("requestingUser", decision.Principal.Username)

		c.Next()
	}
}

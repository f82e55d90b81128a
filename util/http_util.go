// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	gk_errors "github.com/dev-mohitbeniwal/gatekeeper/api/errors"
	logger "github.com/dev-mohitbeniwal/gatekeeper/api/logging"
	"github.com/dev-mohitbeniwal/gatekeeper/api/model"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetPrincipalFromContext returns the principal the auth middleware
// attached to the request.
func GetPrincipalFromContext(c *gin.Context) (*model.Principal, error) {
	value, exists := c.Get("principal")
	if !exists {
		return nil, gk_errors.ErrUnauthorized
	}
	principal, ok := value.(*model.Principal)
	if !ok {
		return nil, gk_errors.ErrUnauthorized
	}
	return principal, nil
}

func GetUserIDFromContext(c *gin.Context) (string, error) {
	principal, err := GetPrincipalFromContext(c)
	if err != nil {
		return "", err
	}
	return principal.ID, nil
}

// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/gatekeeper/api/authorizer"
	"github.com/dev-mohitbeniwal/gatekeeper/api/controller"
	"github.com/dev-mohitbeniwal/gatekeeper/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	authz *authorizer.Authorizer,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.BearerAuth(authz))

	api := router.Group("/api/v1")

	controllers.User.RegisterRoutes(api)

	return router
}

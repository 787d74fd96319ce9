package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/centuriocontact-dev/matching-interim-api/internal/handlers"
)

// AppHandlers groups every HTTP handler the router mounts.
type AppHandlers struct {
	MatchingHandler *handlers.MatchingHandler
	BesoinHandler   *handlers.BesoinHandler
	CandidatHandler *handlers.CandidatHandler
}

// RegisterRoutes mounts all API v1 routes plus the health probe.
func RegisterRoutes(router *gin.Engine, appHandlers *AppHandlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		appHandlers.MatchingHandler.RegisterRoutes(api)
		appHandlers.BesoinHandler.RegisterRoutes(api)
		appHandlers.CandidatHandler.RegisterRoutes(api)
	}
}

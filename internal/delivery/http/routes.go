package http

import (
	"github.com/gin-gonic/gin"

	"github.com/plantarium/catalog/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Identity resolution for the ingestion pipeline
		match := v1.Group("/match")
		{
			match.POST("/products", handler.MatchProducts)
			match.POST("/plants", handler.MatchPlants)
			match.POST("/offers", handler.MatchOffers)
		}

		// Override resolution with explainability
		v1.POST("/entities/:type/:id/resolve", handler.ResolveEntity)

		// Offer refresh jobs
		offers := v1.Group("/offers")
		{
			offers.POST("/:id/observations", handler.RecordObservation)
			offers.POST("/:id/head", handler.RecordHeadObservation)
			offers.GET("/:id/history", handler.GetPriceHistory)
		}
	}

	return router
}

package http

import (
	"github.com/ekoscanner/ekoscanner/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SummaryPath is where the relay serves summaries
const SummaryPath = "/api/eco-summary"

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger.Named("access")))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	limited := router.Group("/", RateLimitMiddleware(cfg.RateLimit.PerIP))
	limited.POST(SummaryPath, handler.EcoSummary)

	v1 := limited.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("/:barcode", handler.GetProduct)
		}
	}

	return router
}

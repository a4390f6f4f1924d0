package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"unlock/internal/handler"
	"unlock/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	OrderHandler          *handler.OrderHandler
	VerifyHandler         *handler.VerifyHandler
	EntitlementHandler    *handler.EntitlementHandler
	ReconciliationHandler *handler.ReconciliationHandler
	RedisClient           *redis.Client
	NewRelicApp           *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Order routes.
		orders := v1.Group("/orders")
		{
			orders.POST("", deps.OrderHandler.CreateOrder)
			orders.GET("/:id", deps.OrderHandler.GetOrder)
		}

		// Confirmation verification.
		v1.POST("/verify", deps.VerifyHandler.Verify)

		// Per-user entitlement and payment history routes.
		users := v1.Group("/users")
		{
			users.GET("/:id/entitlements", deps.EntitlementHandler.GetEntitlements)
			users.GET("/:id/payments", deps.EntitlementHandler.GetPayments)
		}

		// Operator routes.
		v1.GET("/reconciliations", deps.ReconciliationHandler.ListOpen)
	}

	return router
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"returns-backend/internal/shared/middleware"
	"returns-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupCustomerReturnRoutes(v1, c)
		setupAdminReturnRoutes(v1, c)
		setupAdminRefundRoutes(v1, c)
	}

	return router
}

// ========================================
// CUSTOMER RETURN ROUTES
// ========================================
func setupCustomerReturnRoutes(rg *gin.RouterGroup, c *container.Container) {
	auth := rg.Group("")
	auth.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		auth.POST("/orders/:orderId/returns", c.ReturnHandler.Create)
		auth.GET("/orders/:orderId/returns", c.ReturnHandler.ListByOrder)

		returns := auth.Group("/returns")
		returns.GET("/:id", c.ReturnHandler.GetDetail)
		returns.PUT("/:id/method", c.ReturnHandler.ChooseMethod)
		returns.POST("/:id/cancel", c.ReturnHandler.Cancel)
	}
}

// ========================================
// ADMIN RETURN ROUTES
// ========================================
func setupAdminReturnRoutes(rg *gin.RouterGroup, c *container.Container) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.GET("/orders/:orderId/returns", c.ReturnHandler.ListByOrder)
		admin.GET("/returns/:id", c.ReturnHandler.GetDetail)
		admin.PUT("/returns/:id/status", c.ReturnHandler.UpdateStatus)
	}
}

// ========================================
// ADMIN REFUND ROUTES
// ========================================
func setupAdminRefundRoutes(rg *gin.RouterGroup, c *container.Container) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.GET("/orders/:orderId/refunds", c.RefundHandler.ListByOrder)
		admin.PUT("/refunds/:id/status",
			middleware.ActorRateLimit(c.Cache, "refund_status", c.Config.Refund.RateLimit, c.Config.Refund.RateLimitWindow),
			c.RefundHandler.UpdateStatus,
		)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus, redisStatus := "up", "up"

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			status, dbStatus = http.StatusServiceUnavailable, "down"
		}
		if err := c.Cache.Ping(checkCtx); err != nil {
			status, redisStatus = http.StatusServiceUnavailable, "down"
		}

		ctx.JSON(status, gin.H{
			"status":   http.StatusText(status),
			"version":  c.Config.App.Version,
			"database": dbStatus,
			"redis":    redisStatus,
			"pool":     c.DB.Stats(),
		})
	}
}

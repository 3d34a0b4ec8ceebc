package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"stark-ops.backend/internal/infrastructure/metrics"
	"stark-ops.backend/internal/interfaces/http/handlers"
	"stark-ops.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler     *handlers.AuthHandler
	contractHandler *handlers.ContractHandler
	authMiddleware  gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/token", d.authHandler.IssueToken)
		}

		// Contract registry and operations (protected)
		contracts := v1.Group("/contracts")
		contracts.Use(d.authMiddleware)
		{
			contracts.POST("", d.contractHandler.RegisterContract)
			contracts.GET("", d.contractHandler.ListContracts)
			contracts.GET("/:id", d.contractHandler.GetContract)
			contracts.DELETE("/:id", d.contractHandler.DeleteContract)
			// Submissions spend funds, so retries must not resubmit
			idempotency := middleware.IdempotencyMiddleware()
			contracts.POST("/:id/deploy", idempotency, d.contractHandler.DeployContract)
			contracts.POST("/:id/invoke", idempotency, d.contractHandler.InvokeContract)
			contracts.POST("/:id/call", idempotency, d.contractHandler.CallContract)
			contracts.GET("/:id/transactions", d.contractHandler.ListTransactions)
		}

		// Transaction status (protected)
		transactions := v1.Group("/transactions")
		transactions.Use(d.authMiddleware)
		{
			transactions.GET("/:hash", d.contractHandler.GetTransaction)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "stark-ops-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key, X-Request-ID")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

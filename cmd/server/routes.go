package main

import (
	"github.com/gin-gonic/gin"
	"problem-hunt.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	authHandler    *handlers.AuthHandler
	walletHandler  *handlers.WalletHandler
	orderHandler   *handlers.OrderHandler
	authMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/refresh", d.authHandler.Refresh)
			auth.GET("/challenge", d.authHandler.Challenge)
			auth.POST("/wallet", d.authHandler.WalletLogin)
			auth.GET("/me", d.authMiddleware, d.authHandler.Me)
		}

		// Wallet routes (protected)
		wallets := v1.Group("/wallets")
		wallets.Use(d.authMiddleware)
		{
			wallets.POST("", d.walletHandler.Link)
			wallets.GET("", d.walletHandler.List)
			wallets.PUT("/:id/primary", d.walletHandler.SetPrimary)
			wallets.DELETE("/:id", d.walletHandler.Disconnect)
		}

		// Order routes (protected)
		orders := v1.Group("/orders")
		orders.Use(d.authMiddleware)
		{
			orders.POST("", d.orderHandler.Create)
			orders.GET("", d.orderHandler.List)
			orders.GET("/:id", d.orderHandler.Get)
			orders.POST("/:id/verify", d.orderHandler.Verify)
		}
	}
}

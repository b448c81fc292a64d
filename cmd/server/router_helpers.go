package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"problem-hunt.backend/internal/interfaces/http/middleware"
	"problem-hunt.backend/pkg/jwt"
)

func middlewareStack() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(),
	}
}

func newAuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return middleware.AuthMiddleware(jwtService)
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

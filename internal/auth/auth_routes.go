package auth

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authMiddleware gin.HandlerFunc) {
	auth := r.Group("/auth")
	auth.Use(authMiddleware)
	{
		auth.GET("/me", middleware.RateLimitByEmployee(2, 5), handler.Me)
		auth.POST("/refresh", middleware.RateLimitByEmployee(0.1, 3), handler.RefreshToken)
	}
}

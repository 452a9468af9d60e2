package api

import (
	"github.com/gin-gonic/gin"

	"github.com/taskboxhq/taskbox/internal/auth"
	"github.com/taskboxhq/taskbox/internal/handlers"
	"github.com/taskboxhq/taskbox/internal/middleware"
)

func registerAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler, otpHandler *handlers.OTPHandler) {
	group.POST("/auth/login", authHandler.Login)

	otp := group.Group("/otp")
	{
		otp.POST("/request", otpHandler.Request)
		otp.POST("/verify", otpHandler.Verify)
	}
}

func registerUserRoutes(group *gin.RouterGroup, handler *handlers.UserHandler, jwtService *auth.JWTService) {
	users := group.Group("/users")

	// Registration is the only unauthenticated account operation.
	users.POST("", handler.Create)

	protected := users.Group("")
	protected.Use(middleware.RequireAuth(jwtService))
	{
		protected.GET("", handler.List)
		protected.GET("/me", handler.Me)
		protected.GET("/:id", handler.Get)
		protected.PUT("/:id", handler.Update)
		protected.DELETE("/:id", handler.Delete)
		protected.GET("/username/:username", handler.GetByUsername)
		protected.GET("/email/:email", handler.GetByEmail)
	}
}

func registerTodoRoutes(group *gin.RouterGroup, handler *handlers.TodoHandler, jwtService *auth.JWTService) {
	todos := group.Group("/todos")

	// Reads are public; mutations require a bearer token.
	todos.GET("", handler.List)
	todos.GET("/:id", handler.Get)

	protected := todos.Group("")
	protected.Use(middleware.RequireAuth(jwtService))
	{
		protected.POST("", handler.Create)
		protected.PUT("/:id", handler.Update)
		protected.PATCH("/:id/toggle", handler.Toggle)
		protected.DELETE("/:id", handler.Delete)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ishwarchoudhari/FloDo/internal/handlers"
	"github.com/ishwarchoudhari/FloDo/internal/middleware"
	"github.com/ishwarchoudhari/FloDo/internal/models"
	"github.com/ishwarchoudhari/FloDo/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	authService services.AuthService,
	cookieName string,
	authHandler *handlers.AuthHandler,
	clientAuthHandler *handlers.ClientAuthHandler,
	resetHandler *handlers.PasswordResetHandler,
	userHandler *handlers.UserHandler,
) *gin.Engine {

	// ---- public
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/status", authHandler.Status)
		auth.POST("/password/forgot", resetHandler.RequestSuperAdminReset)
		auth.POST("/password/verify", resetHandler.VerifySuperAdminCode)
		auth.POST("/password/confirm", resetHandler.ConfirmSuperAdminReset)
	}

	clientAuth := r.Group("/client/auth")
	{
		clientAuth.POST("/signup", clientAuthHandler.Signup)
		clientAuth.POST("/login", clientAuthHandler.Login)
		clientAuth.POST("/password/forgot", resetHandler.RequestClientReset)
		clientAuth.POST("/password/reset", resetHandler.ResetClientPassword)
	}

	// ---- protected
	r.Use(middleware.SessionAuth(authService, cookieName))

	r.POST("/auth/logout", authHandler.Logout)
	r.POST("/client/auth/logout", clientAuthHandler.Logout)

	// USERS (dashboard only)
	users := r.Group("/users", middleware.RequireUserType(models.UserTypeAdmin))
	{
		users.GET("/me", userHandler.Me)
		users.POST("/:id/promote", userHandler.Promote)
	}

	return r
}

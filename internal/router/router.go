package router

import (
	"net/http"

	"bot_admin_backend/internal/handlers"
	"bot_admin_backend/internal/middleware"
	"bot_admin_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Dependencies are the services the HTTP API is built on.
type Dependencies struct {
	Preferences services.UserPreferencesService
	Settings    services.SettingsService
	Auth        services.AuthService
	JWTSecret   []byte
}

// Setup initializes the routing for the application.
// Routes are protected by the JWT middleware only when admin login is enabled.
func Setup(engine *gin.Engine, deps Dependencies) {
	prefHandler := handlers.NewPreferenceHandler(deps.Preferences)
	settingHandler := handlers.NewSettingHandler(deps.Settings)
	authHandler := handlers.NewAuthHandler(deps.Auth)

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := engine.Group("/api/v1")
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)

	authenticated := apiV1.Group("")
	if deps.Auth.Enabled() {
		authenticated.Use(middleware.AuthMiddleware(deps.JWTSecret), middleware.RoleAuthMiddleware(services.AdminRole))
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
	}
	{
		SetupPreferenceRoutes(authenticated, prefHandler)
		SetupSettingsRoutes(authenticated, settingHandler)
	}
}

func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.Login)
}

func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
}

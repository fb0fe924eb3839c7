package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bot_admin_backend/internal/config"
	"bot_admin_backend/internal/database"
	"bot_admin_backend/internal/repositories"
	"bot_admin_backend/internal/router"
	"bot_admin_backend/internal/services"
	"bot_admin_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", "console")
		utils.LogError(err, "Failed to load configuration")
		os.Exit(1)
	}
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	db, dialect, err := database.OpenAndMigrate(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		utils.LogError(err, "Failed to prepare database")
		os.Exit(1)
	}
	defer db.Close()

	configRepo := repositories.NewConfigRepository(db, dialect)
	deps := router.Dependencies{
		Preferences: services.NewUserPreferencesService(configRepo, db, services.PreferencesOptions{
			CacheTTL: cfg.PreferencesCacheTTL,
		}),
		Settings: services.NewSettingsService(configRepo, db),
		Auth: services.NewAuthService(services.AuthConfig{
			AdminUsername:     cfg.AdminUsername,
			AdminPasswordHash: cfg.AdminPasswordHash,
			JWTSecret:         cfg.JWTSecret,
			JWTExpiration:     cfg.JWTExpiration,
		}),
		JWTSecret: []byte(cfg.JWTSecret),
	}
	if !cfg.AuthEnabled() {
		utils.LogWarn("ADMIN_PASSWORD_HASH is not set, the API is served without authentication")
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	// Add GinLogger middleware for request logging
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", utils.RequestIDHeader}
	engine.Use(cors.New(corsConfig))

	router.Setup(engine, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "database_driver": string(dialect)})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server shutdown failed")
	}
	utils.LogInfo("Server stopped")
}

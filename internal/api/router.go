package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cosmetic-storefront/internal/api/handler"
	"github.com/cosmetic-storefront/internal/api/middleware"
	"github.com/cosmetic-storefront/internal/config"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	cfg *config.Config,
	r *gin.Engine,
	authHandler *handler.AuthHandler,
	catalogHandler *handler.CatalogHandler,
	storeHandler *handler.StoreHandler,
	userHandler *handler.UserHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	jwtSecret := cfg.Auth.JWTSecret

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Registration and login
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/password", middleware.RequireAuth(jwtSecret), authHandler.ChangePassword)
		}

		// Catalog browsing; ownership decoration kicks in when a token is sent
		cosmetics := v1.Group("/cosmetics")
		{
			cosmetics.GET("", catalogHandler.List)
			cosmetics.GET("/:id", middleware.OptionalAuth(jwtSecret), catalogHandler.GetByID)
		}

		// Catalog sync control
		sync := v1.Group("/sync")
		{
			sync.GET("/status", catalogHandler.SyncStatus)
			sync.POST("", middleware.RequireAuth(jwtSecret), catalogHandler.TriggerSync)
		}

		// Purchase and return settlement
		store := v1.Group("/store", middleware.RequireAuth(jwtSecret))
		{
			store.POST("/purchase", storeHandler.Purchase)
			store.POST("/return", storeHandler.Return)
		}

		// Profile, inventory, transaction log
		me := v1.Group("/me", middleware.RequireAuth(jwtSecret))
		{
			me.GET("", userHandler.Me)
			me.GET("/transactions", userHandler.Transactions)
			me.GET("/cosmetics", userHandler.Owned)
			me.GET("/history", userHandler.History)
		}

		// Public directory and profile inventory
		v1.GET("/users", userHandler.Directory)
		v1.GET("/users/:id/cosmetics", userHandler.OwnedByUser)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}

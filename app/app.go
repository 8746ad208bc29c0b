// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/repository"
	"go-auth-api/router"
	"go-auth-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	r := buildRouter(database, redisClient)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// buildRouter wires repositories, services, and handlers together.
func buildRouter(database *sql.DB, redisClient *redis.Client) http.Handler {
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)

	ttlProvider := config.NewTokenTTLProvider()
	authService := service.NewAuthService(userRepo, tokenRepo, ttlProvider)
	userService := service.NewUserService(userRepo, redisClient)

	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := handler.AuthMiddleware(authService, userService)

	return router.NewRouter(userHandler, authHandler, authMiddleware)
}

// TestApp exposes the wired router plus its backing stores for
// integration tests.
type TestApp struct {
	DB     *sql.DB
	Redis  *redis.Client
	Router http.Handler
}

func NewTestApp(database *sql.DB, redisClient *redis.Client) *TestApp {
	return &TestApp{
		DB:     database,
		Redis:  redisClient,
		Router: buildRouter(database, redisClient),
	}
}

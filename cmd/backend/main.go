// Package main provides the entry point for the LinkShield URL Shortener service.
//
//	@title			LinkShield URL Shortener API
//	@version		1.0.0
//	@description	A URL shortener service with AI-backed safety classification and admin moderation.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Authorization header. Format: "Bearer {token}"
package main

import (
	"LinkShield-Backend/internal/auth"
	"LinkShield-Backend/internal/config"
	"LinkShield-Backend/internal/database"
	httpHandler "LinkShield-Backend/internal/handler/http"
	"LinkShield-Backend/internal/repository/postgres"
	"LinkShield-Backend/internal/safety"
	"LinkShield-Backend/internal/service"
	"LinkShield-Backend/pkg/logger"
	"LinkShield-Backend/pkg/useragent"
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting LinkShield service", zap.String("env", cfg.Env))

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations if enabled
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Seed initial data if enabled
	if cfg.Database.SeedData {
		log.Info("seeding database with initial data (seed_data: true)")
		if err := database.SeedData(db, &cfg.Database, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	} else {
		log.Info("skipping database seeding (seed_data: false)")
	}

	// Initialize User-Agent parser
	regexesPath := "assets/regexes.yaml"
	if err := useragent.InitGlobalParser(regexesPath, log); err != nil {
		log.Warn("failed to initialize User-Agent parser, using fallback", zap.Error(err))
	}

	// Initialize storage and services
	storage := postgres.New(db, log)
	classifier := safety.NewClassifier(&cfg.Safety, log)
	if cfg.Safety.APIKey == "" {
		log.Warn("no safety classifier API key configured, running in degraded mode")
	}
	shortenerService := service.NewShortener(storage, classifier, &cfg.Shortener, &cfg.Safety, log)
	moderationService := service.NewModeration(storage, log)

	// Initialize JWT service for authentication
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT secret is not configured (JWT_SECRET)")
	}
	jwtConfig := &auth.JWTConfig{
		SecretKey:            []byte(cfg.JWT.Secret),
		AccessTokenDuration:  cfg.JWT.AccessTokenTTL,
		RefreshTokenDuration: cfg.JWT.RefreshTokenTTL,
		Issuer:               cfg.JWT.Issuer,
	}
	jwtService := auth.NewJWTService(jwtConfig)
	passwordService := auth.NewPasswordService()

	// Create HTTP server
	httpAPIServer := httpHandler.NewServer(
		storage,
		shortenerService,
		moderationService,
		jwtService,
		passwordService,
		log,
	)

	// Setup routes
	httpMux := httpAPIServer.SetupRoutes()

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      httpMux,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	// Start HTTP server in goroutine
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down LinkShield service...")

	// Gracefully stop HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
}

// Package main is the entry point for the DocShelf catalog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"docshelf/internal/auth"
	"docshelf/internal/cache"
	"docshelf/internal/config"
	"docshelf/internal/database"
	"docshelf/internal/handlers"
	"docshelf/internal/mailer"
	"docshelf/internal/middleware"
	"docshelf/internal/router"
	"docshelf/internal/storage"
	"docshelf/internal/store"
	"docshelf/internal/workflow"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"storage", cfg.StorageBackend,
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN(), cfg.DBMaxConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the initial superadmin account (no-op once users exist).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for listing caching. The server runs without it,
	// serving every listing from the database.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, listing cache disabled", "error", err)
		valkeyClient = nil
	} else {
		defer valkeyClient.Close()
	}
	listings := cache.NewListingCache(valkeyClient, cache.DefaultListingTTL)

	// Select the storage backend.
	var backend storage.Backend
	var fileServer http.Handler
	switch cfg.StorageBackend {
	case "s3":
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		backend = s3
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	default:
		local, err := storage.NewLocal(cfg.UploadRoot, cfg.FileBaseURL)
		if err != nil {
			slog.Error("failed to initialize local storage", "error", err)
			os.Exit(1)
		}
		backend = local
		fileServer = http.StripPrefix(strings.TrimSuffix(cfg.FileBaseURL, "/"), http.FileServer(http.Dir(local.Root())))
		slog.Info("local storage ready", "root", local.Root())
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	assetStore := store.NewAssetStore(db)
	tokenStore := store.NewResetTokenStore(db)

	// Bearer token authorizer, backed by the live user table.
	authorizer := auth.New(userStore, cfg.JWTSecret, cfg.JWTTTL)

	// Reset mail goes through SendGrid when a key is configured; the log
	// mailer keeps the flow usable in development.
	var mail mailer.Mailer
	if cfg.SendGridKey != "" {
		mail = mailer.NewSendGrid(cfg.SendGridKey, cfg.MailFrom)
	} else {
		slog.Warn("no mail provider configured, reset links go to the log")
		mail = mailer.NewLog()
	}

	// Workflows.
	assetWorkflow := workflow.NewAssets(assetStore, backend)
	resetWorkflow := workflow.NewPasswordReset(userStore, tokenStore, mail, cfg.ResetBaseURL, cfg.ResetTokenTTL)

	// Handlers.
	authHandlers := handlers.NewAuth(userStore, authorizer, resetWorkflow)
	documents := handlers.NewDocuments(assetWorkflow, assetStore, listings)
	services := handlers.NewServices(assetWorkflow, assetStore, listings)
	users := handlers.NewUsers(userStore)

	// Brute-force protection on the auth endpoints.
	authLimiter := middleware.NewRateLimiter(20, time.Minute)
	defer authLimiter.Stop()

	r := router.New(router.Deps{
		Authorizer:  authorizer,
		AuthLimiter: authLimiter,
		Auth:        authHandlers,
		Documents:   documents,
		Services:    services,
		Users:       users,
		Files:       fileServer,
		FilesPrefix: cfg.FileBaseURL,
	})

	// WriteTimeout must accommodate large multipart uploads.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

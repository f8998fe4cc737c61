// Package main is the entry point for the Pagecraft builder server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagecraft/internal/assistant"
	"pagecraft/internal/cache"
	"pagecraft/internal/config"
	"pagecraft/internal/database"
	"pagecraft/internal/engine"
	"pagecraft/internal/handlers"
	"pagecraft/internal/live"
	"pagecraft/internal/router"
	"pagecraft/internal/session"
	"pagecraft/internal/share"
	"pagecraft/internal/storage"
	"pagecraft/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Text logs in development, JSON everywhere else.
	if cfg.IsDev() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"generate_delay", cfg.GenerateDelay,
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Valkey holds sessions and the L2 generation caches.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	userStore := store.NewUserStore(db)
	projectStore := store.NewProjectStore(db)
	revisionStore := store.NewRevisionStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	eng := engine.New(cfg.GenerateDelay)
	eng.SetCaches(
		cache.NewArtifactCache(valkeyClient, cache.DefaultCodeTTL),
		cache.NewPreviewCache(valkeyClient, cache.DefaultPreviewTTL),
	)

	signer, err := share.NewSigner(cfg.ShareSecret, share.DefaultTTL)
	if err != nil {
		slog.Error("failed to initialize share signer", "error", err)
		os.Exit(1)
	}

	registry := assistant.NewRegistry(cfg.AIProvider, map[string]assistant.ProviderConfig{
		assistant.ProviderOpenAI: {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		assistant.ProviderClaude: {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
	})
	slog.Info("assistant initialized",
		"active", registry.ActiveName(),
		"available", registry.Available(),
	)

	deps := handlers.Deps{
		Projects:  projectStore,
		Revisions: revisionStore,
		CacheLog:  cacheLogStore,
		Engine:    eng,
		Assistant: assistant.New(registry),
		Hub:       live.NewHub(),
		Share:     signer,
		Origins:   cfg.CORSOrigins,
	}

	// S3-compatible storage is optional; without it deploys answer 503.
	if cfg.StorageConfigured() {
		client, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if client != nil {
			deps.Storage = client
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", client.Bucket())
		}
	} else {
		slog.Warn("s3 storage not configured, deploys disabled")
	}

	r := router.New(router.Options{
		Sessions:      sessionStore,
		Auth:          handlers.NewAuth(sessionStore, userStore),
		API:           handlers.NewAPI(deps),
		Origins:       cfg.CORSOrigins,
		SecureCookies: secureCookies,
	})

	// WriteTimeout must cover the artificial generation delay and assistant
	// calls to hosted models. The live channel hijacks its connection and
	// is not bound by it.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90*time.Second + cfg.GenerateDelay,
		IdleTimeout:       120 * time.Second,
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

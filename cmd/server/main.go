package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codyseavey/mtg-rules-bot/internal/api"
	"github.com/codyseavey/mtg-rules-bot/internal/config"
	"github.com/codyseavey/mtg-rules-bot/internal/database"
	"github.com/codyseavey/mtg-rules-bot/internal/lookup"
	"github.com/codyseavey/mtg-rules-bot/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		log.Fatalf("Failed to load lookup policy: %v", err)
	}

	// Initialize database
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()

	// Overrides from the policy file seed the table; rows edited through the API win.
	overrides, err := database.NewOverrideStore(db)
	if err != nil {
		log.Fatalf("Failed to load name overrides: %v", err)
	}
	if added, err := overrides.Seed(policy.Overrides); err != nil {
		log.Fatalf("Failed to seed name overrides: %v", err)
	} else if added > 0 {
		log.Printf("Seeded %d name overrides from policy", added)
	}

	// Initialize services
	scryfallService := services.NewScryfallService(
		services.WithBaseURL(cfg.ScryfallBaseURL),
		services.WithRateLimit(cfg.ScryfallRateLimit),
		services.WithUserAgent(cfg.ScryfallUserAgent),
	)
	catalog := services.NewCachedCatalog(scryfallService, cfg.CatalogCacheSize, cfg.CatalogCacheTTL)
	resolver := lookup.NewResolver(catalog, policy, overrides)

	// Setup router
	router := api.SetupRouter(cfg, resolver, catalog, overrides, db)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

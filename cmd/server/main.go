package main

import (
	"fmt"
	"log"
	"os"

	"github.com/plantarium/catalog/config"
	httpDelivery "github.com/plantarium/catalog/internal/delivery/http"
	"github.com/plantarium/catalog/internal/infrastructure/cache"
	"github.com/plantarium/catalog/internal/infrastructure/sqlite"
	"github.com/plantarium/catalog/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Plantarium Catalog v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Database: %s", cfg.Database.Path)

	// Initialize infrastructure dependencies
	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open catalog store: %v", err)
	}
	defer store.Close()

	snapshotCache := cache.NewMemoryCache()
	log.Printf("Snapshot TTL: %s", cfg.Matching.SnapshotTTL)

	// Enable debug mode in development environment
	debugLogging := cfg.Matching.EnableDebugLogging
	if cfg.Server.Environment == "development" {
		debugLogging = true
		log.Printf("Matcher debug logging enabled")
	}

	matcherCfg := usecase.MatcherConfig{EnableDebugLogging: debugLogging}

	// Initialize usecase layer
	ingestion := usecase.NewIngestionService(
		usecase.NewProductMatcher(matcherCfg),
		usecase.NewPlantMatcher(matcherCfg),
		usecase.NewOfferMatcher(matcherCfg),
		snapshotCache,
		usecase.IngestionConfig{
			SnapshotTTL:        cfg.Matching.SnapshotTTL,
			EnableDebugLogging: debugLogging,
		},
	)

	applicator := usecase.NewOverrideApplicator(store, matcherCfg)
	observer := usecase.NewOfferObserver(store, store, matcherCfg)

	log.Printf("Matching: debug=%v, rate limit=%.0f req/s (burst %d)",
		debugLogging, cfg.RateLimit.PerIP, cfg.RateLimit.Burst)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(ingestion, applicator, observer, store)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}

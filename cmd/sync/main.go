package main

import (
	"log"

	"github.com/gypaetuscode/dropimator/internal/config"
	"github.com/gypaetuscode/dropimator/internal/database"
	"github.com/gypaetuscode/dropimator/internal/models"
	"github.com/gypaetuscode/dropimator/internal/prestashop"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Shop.Validate(); err != nil {
		log.Fatalf("Invalid shop configuration: %v", err)
	}

	// 2. Connect to the staging database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Product{}); err != nil {
		log.Printf("⚠️ Migration warning: %v", err)
	}

	// 3. Run one full reconciliation pass. Per-record skips and failures are
	// reported through the log; only the fatal class exits non-zero.
	client := prestashop.NewClient(cfg.Shop.URL, cfg.Shop.Key)
	service := prestashop.NewSyncService(db, client)

	if _, err := service.Run(); err != nil {
		log.Fatalf("Sync run aborted: %v", err)
	}
}

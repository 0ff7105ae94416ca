package main

import (
	"log"

	"github.com/gypaetuscode/dropimator/internal/config"
	"github.com/gypaetuscode/dropimator/internal/csvfeed"
	"github.com/gypaetuscode/dropimator/internal/database"
	"github.com/gypaetuscode/dropimator/internal/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.Product{}); err != nil {
		log.Printf("⚠️ Migration warning: %v", err)
	}

	path, err := csvfeed.FindCSV(cfg.Feed.CSVPath)
	if err != nil {
		log.Fatalf("No feed to import: %v", err)
	}

	if _, err := csvfeed.Import(db, path); err != nil {
		log.Fatalf("Import failed: %v", err)
	}
}

package main

import (
	"context"
	"log"

	"github.com/gypaetuscode/dropimator/internal/config"
	"github.com/gypaetuscode/dropimator/internal/database"
	"github.com/gypaetuscode/dropimator/internal/enrich"
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

	ctx := context.Background()
	client, err := enrich.NewGeminiClient(ctx, cfg.Enrichment.APIKey, cfg.Enrichment.Model)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer client.Close()

	service := enrich.NewService(db, client)
	if _, err := service.Run(ctx); err != nil {
		log.Fatalf("Enrichment failed: %v", err)
	}
}

package main

import (
	"fmt"
	"log"

	"github.com/gypaetuscode/dropimator/internal/config"
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

	var total, enriched, priced int64
	db.Model(&models.Product{}).Count(&total)
	db.Model(&models.Product{}).
		Where("description <> '' AND meta_title <> '' AND meta_description <> '' AND category <> ''").
		Count(&enriched)
	db.Model(&models.Product{}).Where("retail_price > 0").Count(&priced)

	fmt.Println("📈 STAGING TABLE")
	fmt.Println("──────────────────────────────────────────────")
	fmt.Printf("  Products:        %4d\n", total)
	fmt.Printf("  Fully enriched:  %4d\n", enriched)
	fmt.Printf("  With price:      %4d\n", priced)
	fmt.Println()

	var products []models.Product
	db.Order("sku").Find(&products)
	for _, p := range products {
		status := " "
		if p.Eligible() {
			status = "✓"
		}
		fmt.Printf("  [%s] %-16s %-40.40s qty=%-5s price=%.2f %s\n",
			status, p.SKU, p.Name, p.Qty, p.RetailPrice, p.Category)
	}
}

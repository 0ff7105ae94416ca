package main

import (
	"context"
	"log"

	"github.com/gypaetuscode/dropimator/internal/config"
	"github.com/gypaetuscode/dropimator/internal/fetch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	downloader := fetch.NewPortalDownloader(cfg.Feed)
	path, err := downloader.Download(context.Background())
	if err != nil {
		log.Fatalf("Feed download failed: %v", err)
	}

	log.Printf("💾 Feed ready for import: %s (set PRODUCT_CSV_PATH or run importcsv from that directory)", path)
}

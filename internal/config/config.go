package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv    string
	Database   DatabaseConfig
	Shop       ShopConfig
	Enrichment EnrichmentConfig
	Feed       FeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// ShopConfig holds remote webservice configuration
type ShopConfig struct {
	URL string // shop base URL, without the /api suffix
	Key string // webservice key, presented on every call
}

// Validate checks that the webservice connection settings are present
func (s ShopConfig) Validate() error {
	if s.URL == "" {
		return fmt.Errorf("PRESTASHOP_URL is required")
	}
	if s.Key == "" {
		return fmt.Errorf("PRESTASHOP_KEY is required")
	}
	return nil
}

// EnrichmentConfig holds Gemini API configuration
type EnrichmentConfig struct {
	APIKey string
	Model  string
}

// FeedConfig holds CSV feed configuration
type FeedConfig struct {
	CSVPath        string // explicit path override; empty = newest *.csv in cwd
	PortalURL      string
	PortalEmail    string
	PortalPassword string
	DownloadDir    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		NodeEnv: getEnv("NODE_ENV", "development"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "dropimator"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Shop: ShopConfig{
			URL: os.Getenv("PRESTASHOP_URL"),
			Key: os.Getenv("PRESTASHOP_KEY"),
		},
		Enrichment: EnrichmentConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		},
		Feed: FeedConfig{
			CSVPath:        os.Getenv("PRODUCT_CSV_PATH"),
			PortalURL:      os.Getenv("CSV_URL"),
			PortalEmail:    os.Getenv("EMAIL"),
			PortalPassword: os.Getenv("PASSWORD"),
			DownloadDir:    getEnv("DOWNLOAD_DIR", "./downloads"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package csvfeed discovers and imports the supplier CSV feed into the
// staging products table.
package csvfeed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gypaetuscode/dropimator/internal/database"
	"github.com/gypaetuscode/dropimator/internal/models"
	"gorm.io/gorm"
)

// FindCSV locates the feed file: an explicit path when configured, otherwise
// the most recently modified *.csv in the working directory.
func FindCSV(explicitPath string) (string, error) {
	if explicitPath != "" {
		info, err := os.Stat(explicitPath)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("configured CSV file does not exist: %s", explicitPath)
		}
		return explicitPath, nil
	}

	matches, err := filepath.Glob("*.csv")
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no CSV files found in the current directory; set PRODUCT_CSV_PATH or place a CSV here")
	}

	sort.Slice(matches, func(i, j int) bool {
		a, errA := os.Stat(matches[i])
		b, errB := os.Stat(matches[j])
		if errA != nil || errB != nil {
			return matches[i] < matches[j]
		}
		return a.ModTime().After(b.ModTime())
	})
	if len(matches) > 1 {
		log.Printf("📄 Multiple CSV files found, using the most recent: %s", matches[0])
	}
	return matches[0], nil
}

// Import reads the ';'-delimited feed and upserts every row into the staging
// table by SKU. Blank cells never clobber values an earlier import or the
// enrichment pass already filled in. Returns the number of rows written.
func Import(db *database.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()

	log.Printf("📄 Reading products from %s", path)

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read feed header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	imported := 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("⚠️ Skipping malformed row %d: %v", line, err)
			continue
		}

		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		sku := cell("sku")
		if sku == "" {
			log.Printf("⚠️ Row %d has no SKU, skipping", line)
			continue
		}

		if err := upsertRow(db, sku, cell); err != nil {
			log.Printf("❌ Failed to store row %d (%s): %v", line, sku, err)
			continue
		}
		imported++
	}

	log.Printf("✅ Imported %d rows from %s", imported, filepath.Base(path))
	return imported, nil
}

func upsertRow(db *database.DB, sku string, cell func(string) string) error {
	var product models.Product
	err := db.First(&product, "sku = ?", sku).Error
	created := false
	if errors.Is(err, gorm.ErrRecordNotFound) {
		product = models.Product{SKU: sku}
		created = true
	} else if err != nil {
		return err
	}

	assign(&product.ManufacturerName, cell("manufacturer_name"))
	assign(&product.Name, cell("name"))
	assign(&product.Qty, cell("qty"))
	assign(&product.Flavour, cell("flavour"))
	assign(&product.Weight, cell("weight"))
	assign(&product.ImgURL, cell("img_url"))
	if price, ok := ParsePrice(cell("retail_price")); ok {
		product.RetailPrice = price
	}

	if created {
		log.Printf("🆕 Creating staging product %s", sku)
		return db.Create(&product).Error
	}
	return db.Save(&product).Error
}

// assign writes the incoming value only when non-empty.
func assign(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// ParsePrice parses a feed price, tolerating the European decimal comma.
func ParsePrice(raw string) (float64, bool) {
	candidate := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if candidate == "" {
		return 0, false
	}
	price, err := strconv.ParseFloat(candidate, 64)
	if err != nil {
		log.Printf("⚠️ Unable to parse retail price: %q", raw)
		return 0, false
	}
	return price, true
}

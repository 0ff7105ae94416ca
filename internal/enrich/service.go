package enrich

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/gypaetuscode/dropimator/internal/database"
	"github.com/gypaetuscode/dropimator/internal/models"
	"gorm.io/datatypes"
)

// Service fills missing category and marketing content on staging products.
// Rows are processed independently: a model failure on one row is logged and
// the pass continues.
type Service struct {
	db     *database.DB
	client *GeminiClient
}

// NewService creates an enrichment service
func NewService(db *database.DB, client *GeminiClient) *Service {
	return &Service{db: db, client: client}
}

// rawResponse is what gets persisted for auditing alongside the row.
type rawResponse struct {
	Prompt string `json:"prompt"`
	Text   string `json:"text"`
	Tokens int32  `json:"total_tokens"`
}

// Run enriches every staging product that still misses a category or any of
// the marketing fields. Returns the number of rows updated.
func (s *Service) Run(ctx context.Context) (int, error) {
	var products []models.Product
	if err := s.db.Order("sku").Find(&products).Error; err != nil {
		return 0, err
	}

	log.Printf("🧠 Enriching %d products", len(products))
	updated := 0
	for i := range products {
		p := &products[i]
		changed := false

		if p.Category == "" {
			changed = s.classify(ctx, p) || changed
		}
		if p.Description == "" || p.MetaTitle == "" || p.MetaDescription == "" {
			changed = s.generateMarketing(ctx, p) || changed
		}

		if !changed {
			continue
		}
		if err := s.db.Save(p).Error; err != nil {
			log.Printf("❌ Failed to store enrichment for %s: %v", p.SKU, err)
			continue
		}
		updated++
	}

	log.Printf("✅ Enrichment done: %d products updated", updated)
	return updated, nil
}

func (s *Service) classify(ctx context.Context, p *models.Product) bool {
	prompt := BuildCategoryPrompt(p)
	text, tokens, err := s.client.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("❌ Category generation failed for %s: %v", p.SKU, err)
		return false
	}

	payload, ok := ParseJSONContent(text)
	if !ok {
		log.Printf("⚠️ Category response for %s is not valid JSON: %s", p.SKU, text)
		return false
	}
	category := FirstPresent(payload, "category", "categorie")
	if category == "" {
		return false
	}

	p.Category = strings.TrimSpace(category)
	s.recordResponse(p, prompt, text, tokens)
	log.Printf("🗂️ Classified %s as %q", p.SKU, p.Category)
	return true
}

func (s *Service) generateMarketing(ctx context.Context, p *models.Product) bool {
	prompt := BuildMarketingPrompt(p)
	text, tokens, err := s.client.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("❌ Marketing generation failed for %s: %v", p.SKU, err)
		return false
	}

	payload, ok := ParseJSONContent(text)
	if !ok {
		log.Printf("⚠️ Marketing response for %s is not valid JSON: %s", p.SKU, text)
		return false
	}

	changed := false
	if v := FirstPresent(payload, "html_description", "descriere"); v != "" {
		p.Description = v
		changed = true
	}
	if v := FirstPresent(payload, "meta_title", "meta_titlu"); v != "" {
		p.MetaTitle = v
		changed = true
	}
	if v := FirstPresent(payload, "meta_description", "meta_descriere"); v != "" {
		p.MetaDescription = v
		changed = true
	}
	if v := FirstPresent(payload, "weight"); v != "" {
		p.Weight = strings.TrimSpace(v)
		changed = true
	}

	if changed {
		s.recordResponse(p, prompt, text, tokens)
	}
	return changed
}

func (s *Service) recordResponse(p *models.Product, prompt, text string, tokens int32) {
	raw, err := json.Marshal(rawResponse{Prompt: prompt, Text: text, Tokens: tokens})
	if err != nil {
		return
	}
	p.EnrichmentResponse = datatypes.JSON(raw)
	p.TotalTokens = tokens
}

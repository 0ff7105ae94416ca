package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gypaetuscode/dropimator/internal/models"
)

// CategoryChoices is the fixed shop taxonomy offered to the model. The sync
// only resolves categories by exact name, so the classifier must stay inside
// this list.
var CategoryChoices = []string{
	"Proteine",
	"Aminoacizi",
	"Vitamine si Minerale",
	"Batoane si Gustari Fitness",
	"Suplimente pentru slabit",
	"Performanta/Stimulatoare",
	"Pre-Workout",
	"Creatina",
	"Imbracaminte si acesorii pentru sala",
	"Masa musculara",
	"Suplimente",
	"Probiotice",
}

// BuildCategoryPrompt creates the prompt used to classify a product into the
// shop taxonomy.
func BuildCategoryPrompt(p *models.Product) string {
	manufacturer := p.ManufacturerName
	if manufacturer == "" {
		manufacturer = "Unknown"
	}
	name := p.Name
	if name == "" {
		name = p.SKU
	}
	return fmt.Sprintf(
		"Strictly generate product category as JSON respecting the given JSON structure "+
			"{\"category\": <one of the value of [%s]>}\n"+
			"Product input:\nManufacturer: %s\nName: %s",
		strings.Join(CategoryChoices, ", "), manufacturer, name)
}

// BuildMarketingPrompt creates the prompt used to generate marketing copy.
func BuildMarketingPrompt(p *models.Product) string {
	manufacturer := p.ManufacturerName
	if manufacturer == "" {
		manufacturer = "Unknown"
	}
	name := p.Name
	if name == "" {
		name = p.SKU
	}
	return fmt.Sprintf(
		"Generate product details using Romanian language and respecting the given JSON structure "+
			"{\"html_description\":<formatted string min 600 tokens max 900 tokens>, "+
			"\"meta_title\": <string no more than 25 tokens length>, "+
			"\"meta_description\": <string no more than 55 tokens length>, "+
			"\"weight\": \"<string>\"}.\n"+
			"Product details input:\n\"manufacturer\": \"%s\",\n\"name\": \"%s\",\n\"flavour\": \"%s\"\nOutput:",
		manufacturer, name, p.Flavour)
}

// CleanJSONBlock removes Markdown fences that may wrap JSON payloads.
func CleanJSONBlock(content string) string {
	stripped := strings.TrimSpace(content)
	if !strings.HasPrefix(stripped, "```") {
		return stripped
	}
	var kept []string
	for _, line := range strings.Split(stripped, "\n") {
		if strings.HasPrefix(line, "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// ParseJSONContent parses a model response into a flat payload map.
func ParseJSONContent(content string) (map[string]any, bool) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(CleanJSONBlock(content)), &payload); err != nil {
		return nil, false
	}
	return payload, true
}

// FirstPresent returns the first non-empty string value among the given keys.
// The model occasionally answers with Romanian key names.
func FirstPresent(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := payload[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

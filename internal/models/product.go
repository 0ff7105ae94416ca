package models

import (
	"time"

	"gorm.io/datatypes"
)

// Product is a staged catalog record: one row per supplier SKU, populated by the
// CSV importer and the enrichment pass, consumed read-only by the shop sync.
type Product struct {
	SKU              string  `gorm:"column:sku;primaryKey" json:"sku"`
	ManufacturerName string  `json:"manufacturer_name"`
	Name             string  `json:"name"`
	Qty              string  `json:"qty"` // kept as the raw feed value, parsed at sync time
	Flavour          string  `json:"flavour"`
	Weight           string  `json:"weight"`
	ImgURL           string  `json:"img_url"`
	RetailPrice      float64 `json:"retail_price"`
	Description      string  `json:"description"`
	MetaTitle        string  `json:"meta_title"`
	MetaDescription  string  `json:"meta_description"`
	Category         string  `json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Last raw model response that touched this row, for auditing.
	EnrichmentResponse datatypes.JSON `gorm:"type:jsonb" json:"enrichment_response"`
	TotalTokens        int32          `json:"total_tokens"`
}

func (Product) TableName() string { return "products" }

// Eligible reports whether the record carries everything a full product
// creation needs. Records failing this are skipped without any remote write.
func (p *Product) Eligible() bool {
	return p.Name != "" &&
		p.Description != "" &&
		p.MetaTitle != "" &&
		p.MetaDescription != "" &&
		p.Category != ""
}

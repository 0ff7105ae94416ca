package prestashop

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/gypaetuscode/dropimator/internal/database"
	"github.com/gypaetuscode/dropimator/internal/models"
)

// SyncService orchestrates one reconciliation pass: full staging read, then
// strictly sequential per-record reconcile. It holds no state between runs;
// the shop is the authority and idempotence comes from lookup-before-create.
type SyncService struct {
	db         *database.DB
	client     *Client
	reconciler *Reconciler
}

// Summary aggregates the per-record outcomes of a run
type Summary struct {
	RunID        string
	Total        int
	Created      int
	StockUpdated int
	Skipped      int
	Failed       int
}

// NewSyncService creates a synchronization service over the staging database
// and webservice client
func NewSyncService(db *database.DB, client *Client) *SyncService {
	return &SyncService{
		db:         db,
		client:     client,
		reconciler: NewReconciler(client),
	}
}

// Run executes a full pass. Only the fatal class returns an error: staging
// unreachable or no webservice session. Everything per-record lands in the
// summary and the log.
func (s *SyncService) Run() (*Summary, error) {
	if err := s.client.Ping(); err != nil {
		return nil, fmt.Errorf("webservice session: %w", err)
	}

	var products []models.Product
	if err := s.db.Order("sku").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load staging products: %w", err)
	}

	summary := &Summary{
		RunID: uuid.NewString(),
		Total: len(products),
	}
	log.Printf("🔄 Sync run %s: %d staging records", summary.RunID, summary.Total)

	for i := range products {
		result := s.reconciler.Reconcile(&products[i])
		switch result.Outcome {
		case OutcomeCreated:
			summary.Created++
		case OutcomeStockUpdated:
			summary.StockUpdated++
			log.Printf("📊 Stock updated for %s", result.SKU)
		case OutcomeSkipped:
			summary.Skipped++
			log.Printf("⏭️ Skipped %s: %s", result.SKU, result.Reason)
		case OutcomeFailed:
			summary.Failed++
			log.Printf("❌ Failed %s (%s): %v", result.SKU, result.Reason, result.Err)
		}
	}

	log.Printf("✅ Sync run %s done: %d created, %d stock updated, %d skipped, %d failed (of %d)",
		summary.RunID, summary.Created, summary.StockUpdated, summary.Skipped, summary.Failed, summary.Total)
	return summary, nil
}

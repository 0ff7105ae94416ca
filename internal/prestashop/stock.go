package prestashop

import (
	"fmt"
	"strconv"
)

// StockSync locates the stock record for a product or a product+combination
// pair and applies a quantity write. Updates follow the full-replace rule:
// the whole stock document is read, only the quantity field is overwritten,
// and the whole document is written back.
type StockSync struct {
	client *Client
}

// NewStockSync creates a stock synchronizer backed by the given client
func NewStockSync(client *Client) *StockSync {
	return &StockSync{client: client}
}

// Update writes the quantity at the stock record for productID, scoped to a
// combination when combinationID is non-zero.
func (s *StockSync) Update(productID, combinationID int64, quantity int) error {
	filters := map[string]string{
		"id_product": strconv.FormatInt(productID, 10),
	}
	if combinationID > 0 {
		filters["id_product_attribute"] = strconv.FormatInt(combinationID, 10)
	}

	found, err := s.client.Find("stock_availables", filters)
	if err != nil {
		return fmt.Errorf("stock lookup for product %d: %w", productID, err)
	}
	stockID, ok := ExtractFirstID(found)
	if !ok {
		return &StockLookupError{ProductID: productID, CombinationID: combinationID}
	}

	doc, err := s.client.Get("stock_availables", stockID)
	if err != nil {
		return fmt.Errorf("stock read %d: %w", stockID, err)
	}
	record := doc.Resource("stock_available")
	if record == nil {
		return &ProtocolError{
			URL: fmt.Sprintf("%s/api/stock_availables/%d", s.client.BaseURL, stockID),
			Err: fmt.Errorf("response carries no stock_available element"),
		}
	}
	record.SetChildText("quantity", strconv.Itoa(quantity))

	if err := s.client.Update("stock_availables", stockID, doc); err != nil {
		return fmt.Errorf("stock write %d: %w", stockID, err)
	}
	return nil
}

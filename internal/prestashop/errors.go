package prestashop

import "fmt"

// ProtocolError indicates the webservice was unreachable or returned a
// response body that could not be parsed as a resource document.
type ProtocolError struct {
	URL string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("webservice protocol error at %s: %v", e.URL, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// CatalogWriteError indicates a create, update or delete was rejected by the
// webservice.
type CatalogWriteError struct {
	Resource string
	Status   int
	Body     string
}

func (e *CatalogWriteError) Error() string {
	return fmt.Sprintf("catalog write to %s rejected with status %d: %s", e.Resource, e.Status, e.Body)
}

// StockLookupError indicates no stock record exists for the given keys. Every
// product gets a stock record auto-provisioned at creation time, so a miss is
// a hard failure for the record, not something to ignore.
type StockLookupError struct {
	ProductID     int64
	CombinationID int64
}

func (e *StockLookupError) Error() string {
	if e.CombinationID > 0 {
		return fmt.Sprintf("no stock record for product %d combination %d", e.ProductID, e.CombinationID)
	}
	return fmt.Sprintf("no stock record for product %d", e.ProductID)
}

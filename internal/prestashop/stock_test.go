package prestashop

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStockUpdateProductScope(t *testing.T) {
	var putBody string
	var lookupQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/stock_availables":
			lookupQuery = r.URL.RawQuery
			io.WriteString(w, `<prestashop><stock_availables><stock_available id="77"/></stock_availables></prestashop>`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/stock_availables/77":
			io.WriteString(w, `<prestashop><stock_available><id>77</id><id_product>5</id_product><id_product_attribute>0</id_product_attribute><quantity>1</quantity><depends_on_stock>0</depends_on_stock></stock_available></prestashop>`)
		case r.Method == http.MethodPut && r.URL.Path == "/api/stock_availables/77":
			body, _ := io.ReadAll(r.Body)
			putBody = string(body)
			io.WriteString(w, `<prestashop/>`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	stock := NewStockSync(NewClient(srv.URL, "key"))
	if err := stock.Update(5, 0, 30); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if strings.Contains(lookupQuery, "id_product_attribute") {
		t.Errorf("product-scoped lookup must not filter on combination: %s", lookupQuery)
	}
	if !strings.Contains(putBody, "<quantity>30</quantity>") {
		t.Errorf("quantity not written:\n%s", putBody)
	}
	// Only quantity changes; the rest of the document rides along.
	if !strings.Contains(putBody, "<depends_on_stock>0</depends_on_stock>") {
		t.Errorf("unrelated stock field clobbered:\n%s", putBody)
	}
}

func TestStockUpdateCombinationScope(t *testing.T) {
	var lookupQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/stock_availables" && r.URL.RawQuery != "":
			lookupQuery = r.URL.RawQuery
			io.WriteString(w, `<prestashop><stock_availables><stock_available id="78"/></stock_availables></prestashop>`)
		case r.URL.Path == "/api/stock_availables/78" && r.Method == http.MethodGet:
			io.WriteString(w, `<prestashop><stock_available><id>78</id><quantity>0</quantity></stock_available></prestashop>`)
		case r.URL.Path == "/api/stock_availables/78" && r.Method == http.MethodPut:
			io.WriteString(w, `<prestashop/>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	stock := NewStockSync(NewClient(srv.URL, "key"))
	if err := stock.Update(5, 9, 4); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !strings.Contains(lookupQuery, "id_product_attribute") {
		t.Errorf("combination-scoped lookup must filter on the combination: %s", lookupQuery)
	}
}

func TestStockUpdateMissingRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<prestashop></prestashop>`)
	}))
	defer srv.Close()

	stock := NewStockSync(NewClient(srv.URL, "key"))
	err := stock.Update(5, 0, 10)

	var lookupErr *StockLookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected StockLookupError, got %v", err)
	}
	if lookupErr.ProductID != 5 {
		t.Errorf("ProductID = %d, want 5", lookupErr.ProductID)
	}
}

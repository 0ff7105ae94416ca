package prestashop

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFindSendsFilterAndAuth(t *testing.T) {
	var gotPath, gotQuery, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("filter[reference]")
		gotUser, _, _ = r.BasicAuth()
		io.WriteString(w, `<prestashop><products><product id="4"/></products></prestashop>`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "WSKEY123")
	doc, err := client.Find("products", map[string]string{"reference": "SKU-9"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if gotPath != "/api/products" {
		t.Errorf("path = %q, want /api/products", gotPath)
	}
	if gotQuery != "[SKU-9]" {
		t.Errorf("filter value = %q, want [SKU-9]", gotQuery)
	}
	if gotUser != "WSKEY123" {
		t.Errorf("basic auth user = %q, want the webservice key", gotUser)
	}
	if id, ok := ExtractFirstID(doc); !ok || id != 4 {
		t.Errorf("extracted id = (%d, %v), want 4", id, ok)
	}
}

func TestCreateReturnsNewID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "<name>Acme</name>") {
			t.Errorf("posted body misses payload field:\n%s", body)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `<prestashop><manufacturer><id>15</id></manufacturer></prestashop>`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	doc := mustParse(t, `<prestashop><manufacturer><name/><active/></manufacturer></prestashop>`)
	doc.Resource("manufacturer").SetChildText("name", "Acme")

	id, err := client.Create("manufacturers", doc)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != 15 {
		t.Errorf("id = %d, want 15", id)
	}
}

func TestCreateRejectedIsCatalogWriteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "validation failed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	doc := mustParse(t, `<prestashop><manufacturer/></prestashop>`)

	_, err := client.Create("manufacturers", doc)
	var writeErr *CatalogWriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected CatalogWriteError, got %v", err)
	}
	if writeErr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", writeErr.Status)
	}
}

func TestFetchUnreachableIsProtocolError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "key")
	_, err := client.BlankSchema("products")
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestFetchMalformedIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `this is not xml <`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	err := client.Ping()
	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestUpdatePutsFullDocument(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		io.WriteString(w, `<prestashop/>`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	doc := mustParse(t, `<prestashop><stock_available><id>8</id><id_product>3</id_product><quantity>2</quantity></stock_available></prestashop>`)
	doc.Resource("stock_available").SetChildText("quantity", "12")

	if err := client.Update("stock_availables", 8, doc); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if gotPath != "/api/stock_availables/8" {
		t.Errorf("path = %q", gotPath)
	}
	// Full-document replace: untouched fields must survive the write.
	if !strings.Contains(gotBody, "<id_product>3</id_product>") {
		t.Errorf("unrelated field missing from PUT body:\n%s", gotBody)
	}
	if !strings.Contains(gotBody, "<quantity>12</quantity>") {
		t.Errorf("mutated field missing from PUT body:\n%s", gotBody)
	}
}

func TestUploadImageMultipart(t *testing.T) {
	var gotPath string
	var gotData []byte
	var gotMime string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not a multipart request: %v", err)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("no image part: %v", err)
		}
		defer file.Close()
		gotData, _ = io.ReadAll(file)
		gotMime = header.Header.Get("Content-Type")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	if err := client.UploadImage(42, "front.jpg", "image/jpeg", payload); err != nil {
		t.Fatalf("UploadImage failed: %v", err)
	}

	if gotPath != "/api/images/products/42" {
		t.Errorf("path = %q", gotPath)
	}
	if string(gotData) != string(payload) {
		t.Errorf("uploaded bytes differ")
	}
	if gotMime != "image/jpeg" {
		t.Errorf("part content type = %q, want image/jpeg", gotMime)
	}
}

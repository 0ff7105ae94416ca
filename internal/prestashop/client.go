package prestashop

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a PrestaShop-style webservice: resource-oriented XML
// endpoints under {base}/api, authenticated with the webservice key presented
// as the HTTP basic user on every call.
type Client struct {
	BaseURL    string
	Key        string
	HTTPClient *http.Client
}

// NewClient creates a new webservice client
func NewClient(baseURL, key string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Key:        key,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) resourceURL(resource string) string {
	return fmt.Sprintf("%s/api/%s", c.BaseURL, resource)
}

func (c *Client) do(method, rawURL string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequest(method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.Key, "")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.HTTPClient.Do(req)
}

// fetch issues a GET and parses the body as a resource document.
func (c *Client) fetch(rawURL string) (*Document, error) {
	resp, err := c.do(http.MethodGet, rawURL, nil, "")
	if err != nil {
		return nil, &ProtocolError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProtocolError{URL: rawURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProtocolError{URL: rawURL, Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(data))}
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, &ProtocolError{URL: rawURL, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return doc, nil
}

// Ping verifies that a webservice session can be established at all.
func (c *Client) Ping() error {
	_, err := c.fetch(c.BaseURL + "/api")
	return err
}

// BlankSchema retrieves the empty payload template for a resource type. Every
// create starts from this template and overwrites fields.
func (c *Client) BlankSchema(resource string) (*Document, error) {
	return c.fetch(c.resourceURL(resource) + "?schema=blank")
}

// Find issues a filtered read. The response shape is ambiguous (absent,
// singular, plural); callers must go through ExtractMatches/ExtractFirstID.
func (c *Client) Find(resource string, filters map[string]string) (*Document, error) {
	q := url.Values{}
	for field, value := range filters {
		q.Set(fmt.Sprintf("filter[%s]", field), fmt.Sprintf("[%s]", value))
	}
	return c.fetch(c.resourceURL(resource) + "?" + q.Encode())
}

// Get reads one full resource document by identifier.
func (c *Client) Get(resource string, id int64) (*Document, error) {
	return c.fetch(fmt.Sprintf("%s/%d", c.resourceURL(resource), id))
}

// RawGet is the escape hatch for endpoints not expressible through the
// filtered-resource model.
func (c *Client) RawGet(rawURL string) (*Document, error) {
	return c.fetch(rawURL)
}

// Create posts a fully-populated document and returns the new identifier.
func (c *Client) Create(resource string, doc *Document) (int64, error) {
	body, err := doc.Marshal()
	if err != nil {
		return 0, fmt.Errorf("marshal %s payload: %w", resource, err)
	}

	rawURL := c.resourceURL(resource)
	resp, err := c.do(http.MethodPost, rawURL, bytes.NewReader(body), "text/xml")
	if err != nil {
		return 0, &ProtocolError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &CatalogWriteError{Resource: resource, Status: resp.StatusCode, Body: truncate(data)}
	}

	created, err := ParseDocument(data)
	if err != nil {
		return 0, &ProtocolError{URL: rawURL, Err: fmt.Errorf("malformed create response: %w", err)}
	}
	id, ok := ExtractFirstID(created)
	if !ok {
		return 0, &ProtocolError{URL: rawURL, Err: fmt.Errorf("create response carries no identifier")}
	}
	return id, nil
}

// Update replaces a full resource document. The protocol has no partial
// patch: callers must read, mutate the field of interest, and write the whole
// document back.
func (c *Client) Update(resource string, id int64, doc *Document) error {
	body, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", resource, err)
	}

	rawURL := fmt.Sprintf("%s/%d", c.resourceURL(resource), id)
	resp, err := c.do(http.MethodPut, rawURL, bytes.NewReader(body), "text/xml")
	if err != nil {
		return &ProtocolError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return &CatalogWriteError{Resource: resource, Status: resp.StatusCode, Body: truncate(data)}
	}
	return nil
}

// Delete removes a resource by identifier.
func (c *Client) Delete(resource string, id int64) error {
	rawURL := fmt.Sprintf("%s/%d", c.resourceURL(resource), id)
	resp, err := c.do(http.MethodDelete, rawURL, nil, "")
	if err != nil {
		return &ProtocolError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return &CatalogWriteError{Resource: resource, Status: resp.StatusCode, Body: truncate(data)}
	}
	return nil
}

// UploadImage attaches image bytes to a product through the multipart image
// endpoint, which is distinct from the document-based resources.
func (c *Client) UploadImage(productID int64, filename, mimeType string, data []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("build image upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("build image upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("build image upload: %w", err)
	}

	rawURL := fmt.Sprintf("%s/api/images/products/%d", c.BaseURL, productID)
	resp, err := c.do(http.MethodPost, rawURL, &buf, mw.FormDataContentType())
	if err != nil {
		return &ProtocolError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &CatalogWriteError{Resource: "images/products/" + strconv.FormatInt(productID, 10), Status: resp.StatusCode, Body: truncate(body)}
	}
	return nil
}

func truncate(data []byte) string {
	const max = 300
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

package prestashop

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gypaetuscode/dropimator/internal/models"
	"github.com/gypaetuscode/dropimator/internal/utils"
)

// MarginMultiplier converts the supplier retail price into the shop sell
// price. Applied before any remote write.
const MarginMultiplier = 4.96

// Oversized source images are scaled down to this bound before upload.
const maxImageDimension = 1600

// Outcome classifies what happened to one staging record.
type Outcome string

const (
	OutcomeCreated      Outcome = "created"
	OutcomeStockUpdated Outcome = "stock_updated"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeFailed       Outcome = "failed"
)

// Result is the per-record reconciliation outcome. Skips and failures are
// values, not panics: the run driver aggregates them into a summary and one
// bad record never aborts the pass.
type Result struct {
	SKU     string
	Outcome Outcome
	Reason  string
	Err     error
}

func skipped(sku, reason string) Result {
	return Result{SKU: sku, Outcome: OutcomeSkipped, Reason: reason}
}

func failed(sku, reason string, err error) Result {
	return Result{SKU: sku, Outcome: OutcomeFailed, Reason: reason, Err: err}
}

// Reconciler drives one staging record to a consistent remote state: resolve
// referenced entities, decide create-vs-update, and funnel every quantity
// write through the stock synchronizer.
type Reconciler struct {
	client   *Client
	resolver *Resolver
	stock    *StockSync
	images   *http.Client
}

// NewReconciler wires a reconciler and its collaborators around one client
func NewReconciler(client *Client) *Reconciler {
	return &Reconciler{
		client:   client,
		resolver: NewResolver(client),
		stock:    NewStockSync(client),
		images:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Reconcile processes a single staging record. Re-running over unchanged
// staging data converges: every create is preceded by a lookup, so a second
// pass only re-writes stock quantities.
func (r *Reconciler) Reconcile(p *models.Product) Result {
	sku := strings.TrimSpace(p.SKU)
	if sku == "" {
		return skipped(p.SKU, "empty sku")
	}

	manufacturerID, ok := r.resolver.EnsureManufacturer(strings.TrimSpace(p.ManufacturerName))
	if !ok {
		return skipped(sku, "unresolved manufacturer "+p.ManufacturerName)
	}

	if !p.Eligible() {
		return skipped(sku, "missing marketing fields")
	}

	categoryID, ok := r.resolver.ResolveCategory(strings.TrimSpace(p.Category))
	if !ok {
		return skipped(sku, "unknown category "+p.Category)
	}

	if p.RetailPrice <= 0 {
		return skipped(sku, "missing retail price")
	}
	sellPrice := p.RetailPrice * MarginMultiplier
	quantity := parseQuantity(p.Qty)

	existing, err := r.client.Find("products", map[string]string{"reference": sku})
	if err != nil {
		return failed(sku, "product lookup", err)
	}

	if productID, ok := ExtractFirstID(existing); ok {
		return r.updateExisting(sku, productID, quantity)
	}
	return r.createProduct(p, sku, manufacturerID, categoryID, sellPrice, quantity)
}

// updateExisting refreshes the stock quantity of a product that is already in
// the shop. No other field is touched. When the product has combinations only
// the first one found is targeted.
func (r *Reconciler) updateExisting(sku string, productID int64, quantity int) Result {
	combinationID := int64(0)
	combos, err := r.client.Find("combinations", map[string]string{
		"id_product": strconv.FormatInt(productID, 10),
	})
	if err != nil {
		return failed(sku, "combination lookup", err)
	}
	if id, ok := ExtractFirstID(combos); ok {
		combinationID = id
	}

	if err := r.stock.Update(productID, combinationID, quantity); err != nil {
		return failed(sku, "stock update", err)
	}
	return Result{SKU: sku, Outcome: OutcomeStockUpdated}
}

// createProduct builds the full product graph: product document, optional
// image, optional flavour/weight combination, and the stock quantity.
func (r *Reconciler) createProduct(p *models.Product, sku string, manufacturerID, categoryID int64, sellPrice float64, quantity int) Result {
	doc, err := r.buildProductDocument(p, sku, manufacturerID, categoryID, sellPrice)
	if err != nil {
		return failed(sku, "product payload", err)
	}

	productID, err := r.client.Create("products", doc)
	if err != nil {
		return failed(sku, "product create", err)
	}
	log.Printf("🆕 Created product %s (id %d)", sku, productID)

	// Sub-operations below degrade instead of failing the record: a missing
	// image or combination leaves a sellable product behind.
	r.syncImage(sku, productID, p.ImgURL)

	combinationID := int64(0)
	if strings.TrimSpace(p.Flavour) != "" && strings.TrimSpace(p.Weight) != "" {
		combinationID = r.createCombination(p, sku, productID, sellPrice, quantity)
	}

	if err := r.stock.Update(productID, combinationID, quantity); err != nil {
		return failed(sku, "stock update", err)
	}
	return Result{SKU: sku, Outcome: OutcomeCreated}
}

func (r *Reconciler) buildProductDocument(p *models.Product, sku string, manufacturerID, categoryID int64, sellPrice float64) (*Document, error) {
	blank, err := r.client.BlankSchema("products")
	if err != nil {
		return nil, err
	}
	product := blank.Resource("product")
	if product == nil {
		return nil, fmt.Errorf("product schema carries no product element")
	}

	product.SetChildText("reference", sku)
	product.SetChildText("id_manufacturer", strconv.FormatInt(manufacturerID, 10))
	product.SetChildText("price", strconv.FormatFloat(sellPrice, 'f', 6, 64))
	product.SetChildText("id_category_default", strconv.FormatInt(categoryID, 10))
	product.SetChildText("position_in_category", strconv.Itoa(r.categoryItemCount(categoryID)))
	product.SetChildText("active", "1")
	product.SetChildText("state", "1")
	product.SetChildText("available_for_order", "1")
	product.SetLangText("name", p.Name)
	product.SetLangText("description", p.Description)
	product.SetLangText("meta_title", p.MetaTitle)
	product.SetLangText("meta_description", p.MetaDescription)
	product.SetLangText("link_rewrite", utils.Slugify(p.Name))

	if assoc := product.Child("associations"); assoc != nil {
		assoc.ReplaceChildren("categories", wrapID("category", categoryID))
	}
	return blank, nil
}

// wrapID builds the <entity><id>N</id></entity> shape used inside
// association lists.
func wrapID(name string, id int64) Node {
	n := NewNode(name)
	n.Children = []Node{NewTextNode("id", strconv.FormatInt(id, 10))}
	return n
}

// categoryItemCount reads the category document and counts its associated
// products, giving the new product an append position. A failed read falls
// back to zero rather than blocking the create.
func (r *Reconciler) categoryItemCount(categoryID int64) int {
	doc, err := r.client.Get("categories", categoryID)
	if err != nil {
		log.Printf("⚠️ Category read failed for %d, appending at position 0: %v", categoryID, err)
		return 0
	}
	category := doc.Resource("category")
	if category == nil {
		return 0
	}
	if products := category.Path("associations", "products"); products != nil {
		return len(products.Children)
	}
	return 0
}

// syncImage downloads the source image and attaches it to the product.
// Malformed URLs are skipped silently; download or upload failures are logged
// and the record continues without rolling back the product.
func (r *Reconciler) syncImage(sku string, productID int64, imgURL string) {
	imgURL = strings.TrimSpace(imgURL)
	if imgURL == "" {
		return
	}
	parsed, err := url.ParseRequestURI(imgURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return
	}

	resp, err := r.images.Get(imgURL)
	if err != nil {
		log.Printf("⚠️ Image download failed for %s: %v", sku, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("⚠️ Image download failed for %s: status %d", sku, resp.StatusCode)
		return
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("⚠️ Image download failed for %s: %v", sku, err)
		return
	}

	filename := path.Base(parsed.Path)
	if filename == "." || filename == "/" {
		// URL has no path component; the upload still needs a filename.
		filename = "image.jpg"
	}
	mimeType := mimeFromExtension(filename)
	data = normalizeImage(data, mimeType)

	if err := r.client.UploadImage(productID, filename, mimeType, data); err != nil {
		log.Printf("⚠️ Image upload failed for %s: %v", sku, err)
		return
	}
	log.Printf("🖼️ Attached image to product %s", sku)
}

// createCombination ensures both attribute values and links them in a new
// combination. Any failure falls back to product-level stock: the returned id
// is zero and the caller scopes the quantity write to the product.
func (r *Reconciler) createCombination(p *models.Product, sku string, productID int64, sellPrice float64, quantity int) int64 {
	flavourID, ok := r.resolver.EnsureAttributeValue(FlavourGroup, strings.TrimSpace(p.Flavour))
	if !ok {
		return 0
	}
	weightID, ok := r.resolver.EnsureAttributeValue(WeightGroup, strings.TrimSpace(p.Weight))
	if !ok {
		return 0
	}

	blank, err := r.client.BlankSchema("combinations")
	if err != nil {
		log.Printf("⚠️ Combination schema fetch failed for %s: %v", sku, err)
		return 0
	}
	combination := blank.Resource("combination")
	if combination == nil {
		log.Printf("⚠️ Combination schema carries no combination element")
		return 0
	}

	combination.SetChildText("id_product", strconv.FormatInt(productID, 10))
	combination.SetChildText("reference", sku)
	combination.SetChildText("price", strconv.FormatFloat(sellPrice, 'f', 6, 64))
	combination.SetChildText("quantity", strconv.Itoa(quantity))
	combination.SetChildText("minimal_quantity", "1")
	if assoc := combination.Child("associations"); assoc != nil {
		assoc.ReplaceChildren("product_option_values",
			wrapID("product_option_value", flavourID),
			wrapID("product_option_value", weightID))
	}

	id, err := r.client.Create("combinations", blank)
	if err != nil {
		log.Printf("⚠️ Combination create failed for %s, falling back to product stock: %v", sku, err)
		return 0
	}
	log.Printf("🧩 Created combination for %s (id %d)", sku, id)
	return id
}

// parseQuantity never blocks eligibility: absent or unparseable input counts
// as zero, negative values clamp to zero.
func parseQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 0 {
		return 0
	}
	return qty
}

func mimeFromExtension(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

// normalizeImage scales oversized images down to maxImageDimension on the
// long edge, re-encoding in the original format. Undecodable bytes pass
// through untouched and the upload proceeds with the source data.
func normalizeImage(data []byte, mimeType string) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxImageDimension && bounds.Dy() <= maxImageDimension {
		return data
	}

	var resized image.Image
	if bounds.Dx() >= bounds.Dy() {
		resized = imaging.Resize(img, maxImageDimension, 0, imaging.Lanczos)
	} else {
		resized = imaging.Resize(img, 0, maxImageDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	switch mimeType {
	case "image/png":
		err = png.Encode(&buf, resized)
	default:
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return data
	}
	return buf.Bytes()
}

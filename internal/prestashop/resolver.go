package prestashop

import (
	"log"
	"strconv"
)

// Canonical attribute group names. Both must pre-exist in the shop; the
// resolver creates values inside them but never the groups themselves.
const (
	FlavourGroup = "Aroma"
	WeightGroup  = "Greutate"
)

// Resolver provides get-or-create semantics for entities keyed by
// human-readable name. Lookups are exact-string; the shop is re-queried on
// every call so nothing is cached across runs.
type Resolver struct {
	client *Client
}

// NewResolver creates a resolver backed by the given client
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// EnsureManufacturer finds a manufacturer by exact name, creating it when
// absent. Returns false when neither lookup nor creation yields an id; the
// caller skips the record, no retry happens here.
func (r *Resolver) EnsureManufacturer(name string) (int64, bool) {
	if name == "" {
		return 0, false
	}
	doc, err := r.client.Find("manufacturers", map[string]string{"name": name})
	if err != nil {
		log.Printf("❌ Manufacturer lookup failed for %q: %v", name, err)
		return 0, false
	}
	if id, ok := ExtractFirstID(doc); ok {
		return id, true
	}

	blank, err := r.client.BlankSchema("manufacturers")
	if err != nil {
		log.Printf("❌ Manufacturer schema fetch failed: %v", err)
		return 0, false
	}
	m := blank.Resource("manufacturer")
	if m == nil {
		log.Printf("❌ Manufacturer schema carries no manufacturer element")
		return 0, false
	}
	m.SetChildText("name", name)
	m.SetChildText("active", "1")

	id, err := r.client.Create("manufacturers", blank)
	if err != nil {
		log.Printf("❌ Manufacturer creation failed for %q: %v", name, err)
		return 0, false
	}
	log.Printf("🏭 Created manufacturer %q (id %d)", name, id)
	return id, true
}

// ResolveCategory finds a category by exact name. Missing categories are
// never created here: the shop taxonomy is curated by the operator, and an
// unknown name means the record is skipped.
func (r *Resolver) ResolveCategory(name string) (int64, bool) {
	if name == "" {
		return 0, false
	}
	doc, err := r.client.Find("categories", map[string]string{"name": name})
	if err != nil {
		log.Printf("❌ Category lookup failed for %q: %v", name, err)
		return 0, false
	}
	id, ok := ExtractFirstID(doc)
	return id, ok
}

// EnsureAttributeValue resolves a value inside a named attribute group,
// creating the value when the group exists but the value does not. An absent
// group returns false without attempting to create the group.
func (r *Resolver) EnsureAttributeValue(groupName, valueName string) (int64, bool) {
	groups, err := r.client.Find("product_options", map[string]string{"name": groupName})
	if err != nil {
		log.Printf("❌ Attribute group lookup failed for %q: %v", groupName, err)
		return 0, false
	}
	groupID, ok := ExtractFirstID(groups)
	if !ok {
		log.Printf("⚠️ Attribute group %q not found in shop", groupName)
		return 0, false
	}

	values, err := r.client.Find("product_option_values", map[string]string{
		"id_attribute_group": strconv.FormatInt(groupID, 10),
		"name":               valueName,
	})
	if err != nil {
		log.Printf("❌ Attribute value lookup failed for %q/%q: %v", groupName, valueName, err)
		return 0, false
	}
	if id, ok := ExtractFirstID(values); ok {
		return id, true
	}

	blank, err := r.client.BlankSchema("product_option_values")
	if err != nil {
		log.Printf("❌ Attribute value schema fetch failed: %v", err)
		return 0, false
	}
	v := blank.Resource("product_option_value")
	if v == nil {
		log.Printf("❌ Attribute value schema carries no product_option_value element")
		return 0, false
	}
	v.SetChildText("id_attribute_group", strconv.FormatInt(groupID, 10))
	v.SetLangText("name", valueName)

	id, err := r.client.Create("product_option_values", blank)
	if err != nil {
		log.Printf("❌ Attribute value creation failed for %q/%q: %v", groupName, valueName, err)
		return 0, false
	}
	log.Printf("🏷️ Created attribute value %q in group %q (id %d)", valueName, groupName, id)
	return id, true
}

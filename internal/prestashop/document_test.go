package prestashop

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, body string) *Document {
	t.Helper()
	doc, err := ParseDocument([]byte(body))
	if err != nil {
		t.Fatalf("ParseDocument failed: %v", err)
	}
	return doc
}

func TestExtractMatchesEmpty(t *testing.T) {
	for _, body := range []string{
		`<prestashop></prestashop>`,
		`<prestashop><products/></prestashop>`,
	} {
		m := ExtractMatches(mustParse(t, body))
		if !m.Empty() {
			t.Errorf("expected no matches for %s, got %v", body, m.IDs())
		}
		if _, ok := ExtractFirstID(mustParse(t, body)); ok {
			t.Errorf("expected absent first id for %s", body)
		}
	}
}

func TestExtractMatchesSingular(t *testing.T) {
	// One match may come back as a bare element with a nested <id>.
	doc := mustParse(t, `<prestashop><manufacturer><id>7</id><name>Acme</name></manufacturer></prestashop>`)
	id, ok := ExtractFirstID(doc)
	if !ok || id != 7 {
		t.Fatalf("got (%d, %v), want (7, true)", id, ok)
	}
}

func TestExtractMatchesPlural(t *testing.T) {
	doc := mustParse(t, `<prestashop><products>
		<product id="31"/>
		<product id="32"/>
		<product id="33"/>
	</products></prestashop>`)

	m := ExtractMatches(doc)
	if first, ok := m.First(); !ok || first != 31 {
		t.Fatalf("First() = (%d, %v), want (31, true)", first, ok)
	}
	if len(m.IDs()) != 3 {
		t.Errorf("IDs() = %v, want 3 entries", m.IDs())
	}
}

func TestExtractMatchesNil(t *testing.T) {
	if !ExtractMatches(nil).Empty() {
		t.Error("nil document should produce no matches")
	}
}

func TestNodeIDPrefersAttribute(t *testing.T) {
	doc := mustParse(t, `<prestashop><combinations><combination id="12"><id>99</id></combination></combinations></prestashop>`)
	id, ok := ExtractFirstID(doc)
	if !ok || id != 12 {
		t.Fatalf("got (%d, %v), want attribute id 12", id, ok)
	}
}

func TestSetLangText(t *testing.T) {
	doc := mustParse(t, `<prestashop><product>
		<name><language id="1"/><language id="2"/></name>
		<reference/>
	</product></prestashop>`)

	product := doc.Resource("product")
	product.SetLangText("name", "Whey Isolate")
	product.SetChildText("reference", "SKU-1")

	name := product.Child("name")
	for i := range name.Children {
		if name.Children[i].Text != "Whey Isolate" {
			t.Errorf("language slot %d = %q, want %q", i, name.Children[i].Text, "Whey Isolate")
		}
	}
	if got := product.Child("reference").Text; got != "SKU-1" {
		t.Errorf("reference = %q", got)
	}
}

func TestSetLangTextPlainField(t *testing.T) {
	doc := mustParse(t, `<prestashop><product><name/></product></prestashop>`)
	product := doc.Resource("product")
	product.SetLangText("name", "Creatine")
	if got := product.Child("name").Text; got != "Creatine" {
		t.Errorf("name = %q, want Creatine", got)
	}
}

func TestReplaceChildren(t *testing.T) {
	doc := mustParse(t, `<prestashop><product><associations><categories><category><id>1</id></category></categories></associations></product></prestashop>`)
	assoc := doc.Resource("product").Child("associations")
	assoc.ReplaceChildren("categories", wrapID("category", 5))

	cats := assoc.Child("categories")
	if len(cats.Children) != 1 {
		t.Fatalf("expected 1 category association, got %d", len(cats.Children))
	}
	if id, ok := cats.Children[0].ID(); !ok || id != 5 {
		t.Errorf("association id = (%d, %v), want 5", id, ok)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	doc := mustParse(t, `<prestashop xmlns:xlink="http://www.w3.org/1999/xlink"><product>
		<id/>
		<name><language id="1"/></name>
	</product></prestashop>`)
	doc.Resource("product").SetLangText("name", "Protein Bar")

	out, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(out), "Protein Bar") {
		t.Errorf("marshaled document misses the field value:\n%s", out)
	}

	back, err := ParseDocument(out)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	name := back.Resource("product").Path("name", "language")
	if name == nil || name.Text != "Protein Bar" {
		t.Errorf("round trip lost the language value: %+v", back.Resource("product"))
	}
}

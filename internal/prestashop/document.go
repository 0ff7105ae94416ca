package prestashop

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// Node is one element of a webservice XML document. The webservice wraps every
// resource in a <prestashop> envelope; all reads and writes in this package go
// through this generic tree rather than per-resource structs, because writes
// must replay the full document (the protocol has no partial patch).
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []Node     `xml:",any"`
}

// NewNode builds an empty element with the given name.
func NewNode(name string) Node {
	return Node{XMLName: xml.Name{Local: name}}
}

// NewTextNode builds a leaf element with character data.
func NewTextNode(name, text string) Node {
	return Node{XMLName: xml.Name{Local: name}, Text: text}
}

// Child returns the first child with the given local name, or nil.
func (n *Node) Child(name string) *Node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}

// Path walks nested children by local name and returns the final node, or nil
// if any segment is missing.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Attr returns the value of the named attribute, ignoring namespaces.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// ID extracts the numeric identifier of the element: an id attribute if
// present, else the text of an <id> child.
func (n *Node) ID() (int64, bool) {
	if v, ok := n.Attr("id"); ok {
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && id > 0 {
			return id, true
		}
	}
	if c := n.Child("id"); c != nil {
		if id, err := strconv.ParseInt(strings.TrimSpace(c.Text), 10, 64); err == nil && id > 0 {
			return id, true
		}
	}
	return 0, false
}

// SetChildText sets the character data of the named child, appending the
// child if the template does not carry it.
func (n *Node) SetChildText(name, text string) {
	if c := n.Child(name); c != nil {
		c.Text = text
		c.Children = nil
		return
	}
	n.Children = append(n.Children, NewTextNode(name, text))
}

// SetLangText sets a possibly-multilanguage field. Blank schemas expose
// translatable fields as <field><language id="N"/></field>; the value is
// written into every language slot. Plain fields fall back to SetChildText.
func (n *Node) SetLangText(name, text string) {
	c := n.Child(name)
	if c == nil {
		n.Children = append(n.Children, NewTextNode(name, text))
		return
	}
	langs := false
	for i := range c.Children {
		if c.Children[i].XMLName.Local == "language" {
			c.Children[i].Text = text
			langs = true
		}
	}
	if !langs {
		c.Text = text
		c.Children = nil
	}
}

// ReplaceChildren drops the current children of the named child (creating it
// if absent) and installs the given nodes.
func (n *Node) ReplaceChildren(name string, children ...Node) {
	c := n.Child(name)
	if c == nil {
		n.Children = append(n.Children, NewNode(name))
		c = &n.Children[len(n.Children)-1]
	}
	c.Text = ""
	c.Children = children
}

// normalize trims whitespace-only mixed text and drops namespaced attributes
// (xlink hrefs from read responses) so the tree re-marshals cleanly.
func (n *Node) normalize() {
	if len(n.Children) > 0 && strings.TrimSpace(n.Text) == "" {
		n.Text = ""
	}
	kept := n.Attrs[:0]
	for _, a := range n.Attrs {
		if a.Name.Space == "" && !strings.HasPrefix(a.Name.Local, "xmlns") {
			kept = append(kept, a)
		}
	}
	n.Attrs = kept
	for i := range n.Children {
		n.Children[i].normalize()
	}
}

// Document is a full webservice payload: the <prestashop> envelope and its
// single resource (or resource collection) child.
type Document struct {
	Root Node
}

// ParseDocument decodes a webservice response body.
func ParseDocument(data []byte) (*Document, error) {
	var root Node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	return &Document{Root: root}, nil
}

// Resource returns the named element directly under the envelope, or nil.
func (d *Document) Resource(name string) *Node {
	return d.Root.Child(name)
}

// Marshal renders the document back to XML for a POST or PUT body.
func (d *Document) Marshal() ([]byte, error) {
	d.Root.normalize()
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(&d.Root); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Matches is the outcome of a filtered read. The webservice is ambiguous
// about shape: zero matches omit the collection wrapper entirely, one match
// may come back as a bare element, several come back as a list. All call
// sites go through here instead of assuming a list.
type Matches struct {
	ids []int64
}

// Empty reports whether the read found nothing.
func (m Matches) Empty() bool { return len(m.ids) == 0 }

// First returns the identifier of the first match, if any.
func (m Matches) First() (int64, bool) {
	if len(m.ids) == 0 {
		return 0, false
	}
	return m.ids[0], true
}

// IDs returns every matched identifier in response order.
func (m Matches) IDs() []int64 { return m.ids }

// ExtractMatches classifies a read response. Identifiers are looked for on
// the elements directly under the envelope first (singular shape), then one
// level down (collection shape).
func ExtractMatches(doc *Document) Matches {
	if doc == nil {
		return Matches{}
	}
	var ids []int64
	for i := range doc.Root.Children {
		if id, ok := doc.Root.Children[i].ID(); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		for i := range doc.Root.Children {
			wrapper := &doc.Root.Children[i]
			for j := range wrapper.Children {
				if id, ok := wrapper.Children[j].ID(); ok {
					ids = append(ids, id)
				}
			}
		}
	}
	return Matches{ids: ids}
}

// ExtractFirstID returns the identifier of the first element in a response,
// across all three shapes (absent, singular, plural).
func ExtractFirstID(doc *Document) (int64, bool) {
	return ExtractMatches(doc).First()
}

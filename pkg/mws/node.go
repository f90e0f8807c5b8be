package mws

import (
	"encoding/json"
	"strconv"
)

// NodeKind tags the shape of a Node.
type NodeKind int

const (
	// KindScalar is a leaf carrying text.
	KindScalar NodeKind = iota
	// KindMapping is an element with named children.
	KindMapping
	// KindSequence is a run of repeated sibling elements.
	KindSequence
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Node is one value of a normalized response tree.
//
// The wire format does not distinguish a single child from a list with one
// entry, so a field that may repeat can arrive as either a mapping or a
// sequence. Use AsList wherever the field is semantically a list.
type Node struct {
	Kind  NodeKind
	Text  string
	Attrs map[string]string

	keys   []string
	fields map[string]*Node
	items  []*Node
}

// NewScalar returns a leaf node.
func NewScalar(text string) *Node {
	return &Node{Kind: KindScalar, Text: text}
}

// NewMapping returns an empty mapping node.
func NewMapping() *Node {
	return &Node{Kind: KindMapping, fields: make(map[string]*Node)}
}

// NewSequence returns a sequence node holding items in order.
func NewSequence(items ...*Node) *Node {
	return &Node{Kind: KindSequence, items: items}
}

// Set adds or replaces a child of a mapping node, keeping first-seen order.
func (n *Node) Set(key string, child *Node) *Node {
	if n.fields == nil {
		n.fields = make(map[string]*Node)
	}

	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}

	n.fields[key] = child

	return n
}

// Append adds an item to a sequence node.
func (n *Node) Append(items ...*Node) *Node {
	n.items = append(n.items, items...)

	return n
}

// Get walks the tree by key. It returns nil as soon as a step is missing, and
// is safe to call on a nil node.
func (n *Node) Get(path ...string) *Node {
	cur := n
	for _, key := range path {
		if cur == nil {
			return nil
		}

		switch cur.Kind {
		case KindMapping:
			cur = cur.fields[key]
		case KindSequence:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(cur.items) {
				return nil
			}

			cur = cur.items[idx]
		default:
			return nil
		}
	}

	return cur
}

// Has reports whether the path resolves to a node.
func (n *Node) Has(path ...string) bool {
	return n.Get(path...) != nil
}

// String returns the text of a scalar (or a mapping that carries text beside
// its attributes). Nil and container nodes yield "".
func (n *Node) String() string {
	if n == nil {
		return ""
	}

	return n.Text
}

// Value returns the text found at path.
func (n *Node) Value(path ...string) string {
	return n.Get(path...).String()
}

// Attr returns an attribute value.
func (n *Node) Attr(name string) string {
	if n == nil {
		return ""
	}

	return n.Attrs[name]
}

// Keys returns mapping keys in document order.
func (n *Node) Keys() []string {
	if n == nil || n.Kind != KindMapping {
		return nil
	}

	out := make([]string, len(n.keys))
	copy(out, n.keys)

	return out
}

// Items returns sequence items. Non-sequences yield nil; see AsList.
func (n *Node) Items() []*Node {
	if n == nil || n.Kind != KindSequence {
		return nil
	}

	return n.items
}

// Len returns the number of children.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}

	switch n.Kind {
	case KindMapping:
		return len(n.keys)
	case KindSequence:
		return len(n.items)
	default:
		return 0
	}
}

// IsList reports whether n is already list-shaped: a sequence, or a mapping
// whose keys are exactly the contiguous integers starting at 0.
func IsList(n *Node) bool {
	if n == nil {
		return false
	}

	switch n.Kind {
	case KindSequence:
		return true
	case KindMapping:
		return hasIndexKeys(n.keys)
	default:
		return false
	}
}

// AsList applies the single-versus-list promotion rule: list-shaped nodes are
// returned as their items, anything else becomes a one-element slice. A nil
// node yields an empty slice.
func AsList(n *Node) []*Node {
	if n == nil {
		return []*Node{}
	}

	if !IsList(n) {
		return []*Node{n}
	}

	if n.Kind == KindSequence {
		return n.items
	}

	out := make([]*Node, len(n.keys))
	for i := range n.keys {
		out[i] = n.fields[strconv.Itoa(i)]
	}

	return out
}

func hasIndexKeys(keys []string) bool {
	if len(keys) == 0 {
		return false
	}

	seen := make([]bool, len(keys))
	for _, key := range keys {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(keys) || strconv.Itoa(idx) != key || seen[idx] {
			return false
		}

		seen[idx] = true
	}

	return true
}

// Interface converts the tree to plain maps, slices and strings. Attributes
// are placed under "@attributes"; text beside attributes under "@value".
func (n *Node) Interface() interface{} {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case KindSequence:
		out := make([]interface{}, len(n.items))
		for i, item := range n.items {
			out[i] = item.Interface()
		}

		return out
	case KindMapping:
		out := make(map[string]interface{}, len(n.keys)+1)
		for _, key := range n.keys {
			out[key] = n.fields[key].Interface()
		}

		if len(n.Attrs) > 0 {
			out["@attributes"] = n.Attrs
		}

		if n.Text != "" {
			out["@value"] = n.Text
		}

		return out
	default:
		if len(n.Attrs) > 0 {
			return map[string]interface{}{"@attributes": n.Attrs, "@value": n.Text}
		}

		return n.Text
	}
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Interface())
}

// MarshalYAML implements yaml.Marshaler.
func (n *Node) MarshalYAML() (interface{}, error) {
	return n.Interface(), nil
}

// Package layout defines the declarative layout tree consumed by the builder.
//
// A layout is data, not code: every [Node] names a type, carries an ordered
// list of attributes, and owns an ordered list of children. Handlers
// registered with the builder interpret the type and the attribute values.
//
// Layout documents are decoded from YAML or JSON:
//
//	version: v1.0.0
//	styles:
//	  title:
//	    textSize: 20px
//	layout:
//	  type: container
//	  orientation: vertical
//	  children:
//	    - type: text
//	      style: title
//	      content: ${user.name}
//
// Every key of a node mapping other than "type" and "children" is an
// attribute, kept in declaration order.
package layout

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Attribute is a key/value pair on a layout node. The value is opaque to the
// builder: a scalar, a "${...}" binding string, or a nested map or list.
type Attribute struct {
	Name  string
	Value any
}

// Node is one declarative unit of UI description.
//
// Nodes are immutable once decoded; the builder and handlers treat them as
// read-only.
type Node struct {
	Type       string
	Attributes []Attribute
	Children   []*Node
}

// Attribute returns the value of the first attribute with the given name.
func (n *Node) Attribute(name string) (any, bool) {
	if n == nil {
		return nil, false
	}
	for _, attr := range n.Attributes {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return nil, false
}

// Walk visits n and its descendants depth-first in declaration order.
// The visitor receives the node's path from n (see [PathSegment]); returning
// false skips the node's children.
func (n *Node) Walk(visit func(path string, node *Node) bool) {
	if n == nil {
		return
	}
	n.walk(PathSegment(-1, n), visit)
}

func (n *Node) walk(path string, visit func(string, *Node) bool) {
	if !visit(path, n) {
		return
	}
	for i, child := range n.Children {
		if child == nil {
			continue
		}
		child.walk(path+"/"+PathSegment(i, child), visit)
	}
}

// PathSegment formats one path element. The root has no index.
func PathSegment(index int, n *Node) string {
	typ := "?"
	if n != nil && n.Type != "" {
		typ = n.Type
	}
	if index < 0 {
		return typ
	}
	return strconv.Itoa(index) + ":" + typ
}

// MarshalJSON encodes the node as a flat object: "type" first, then the
// attributes in declaration order, then "children".
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeKey := func(key string) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
	}

	if n.Type != "" {
		writeKey("type")
		t, _ := json.Marshal(n.Type)
		buf.Write(t)
	}
	for _, attr := range n.Attributes {
		v, err := json.Marshal(jsonSafe(attr.Value))
		if err != nil {
			return nil, err
		}
		writeKey(attr.Name)
		buf.Write(v)
	}
	if len(n.Children) > 0 {
		writeKey("children")
		c, err := json.Marshal(n.Children)
		if err != nil {
			return nil, err
		}
		buf.Write(c)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String returns the compact JSON form of the node.
func (n *Node) String() string {
	data, err := n.MarshalJSON()
	if err != nil {
		return "{<unencodable layout: " + err.Error() + ">}"
	}
	return string(data)
}

// jsonSafe converts map[any]any values, which encoding/json rejects, into
// map[string]any.
func jsonSafe(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[toKey(k)] = jsonSafe(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonSafe(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonSafe(item)
		}
		return out
	default:
		return v
	}
}

func toKey(k any) string {
	switch key := k.(type) {
	case string:
		return key
	case int:
		return strconv.Itoa(key)
	default:
		b, _ := json.Marshal(key)
		return string(b)
	}
}

// Style is a named, ordered bundle of attributes.
type Style []Attribute

// Styles maps style names to attribute bundles. A nil Styles is valid and
// empty.
type Styles map[string]Style

// Lookup returns the bundle registered under name.
func (s Styles) Lookup(name string) (Style, bool) {
	if s == nil {
		return nil, false
	}
	style, ok := s[name]
	return style, ok
}

package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the newest layout document version this package decodes.
const SchemaVersion = "v1.2.0"

// Document is a decoded layout file: the root node plus the styles and the
// default data it was published with.
type Document struct {
	Version string `yaml:"version,omitempty"`
	Styles  Styles `yaml:"styles,omitempty"`
	Data    any    `yaml:"data,omitempty"`
	Layout  *Node  `yaml:"layout"`
}

// Decode reads one layout document from r. JSON input is accepted since it
// is a subset of YAML.
//
// A document whose top-level mapping has a "type" key and no "layout" key is
// treated as a bare node.
func Decode(r io.Reader) (*Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty layout document")
		}
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("empty layout document")
	}
	top := resolveAlias(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: layout document must be a mapping", top.Line)
	}

	var doc Document
	if isBareNode(top) {
		doc.Layout = &Node{}
		if err := doc.Layout.UnmarshalYAML(top); err != nil {
			return nil, err
		}
	} else if err := top.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode layout document: %w", err)
	}

	if doc.Layout == nil {
		return nil, fmt.Errorf("layout document has no 'layout' node")
	}
	if err := CheckVersion(doc.Version); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeFile reads and decodes the layout document at path.
func DecodeFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// DecodeData reads a standalone data payload (YAML or JSON) used to bind a
// layout.
func DecodeData(data []byte) (any, error) {
	var out any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse data: %w", err)
	}
	return out, nil
}

func isBareNode(m *yaml.Node) bool {
	hasType := false
	for i := 0; i+1 < len(m.Content); i += 2 {
		switch m.Content[i].Value {
		case "layout":
			return false
		case "type":
			hasType = true
		}
	}
	return hasType
}

// UnmarshalYAML decodes a node mapping, keeping attribute order.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: layout node must be a mapping", value.Line)
	}

	var out Node
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], resolveAlias(value.Content[i+1])
		switch key.Value {
		case "type":
			if isNull(val) {
				continue
			}
			if val.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: 'type' must be a string", val.Line)
			}
			out.Type = val.Value
		case "children":
			if isNull(val) {
				continue
			}
			if val.Kind != yaml.SequenceNode {
				return fmt.Errorf("line %d: 'children' must be a list", val.Line)
			}
			out.Children = make([]*Node, 0, len(val.Content))
			for _, item := range val.Content {
				child := &Node{}
				if err := child.UnmarshalYAML(item); err != nil {
					return err
				}
				out.Children = append(out.Children, child)
			}
		default:
			var v any
			if err := val.Decode(&v); err != nil {
				return fmt.Errorf("line %d: attribute %q: %w", val.Line, key.Value, err)
			}
			out.Attributes = append(out.Attributes, Attribute{Name: key.Value, Value: v})
		}
	}
	*n = out
	return nil
}

// UnmarshalYAML decodes a style bundle, keeping attribute order.
func (s *Style) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: style must be a mapping", value.Line)
	}
	out := make(Style, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var v any
		if err := value.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("line %d: style attribute %q: %w", value.Content[i+1].Line, value.Content[i].Value, err)
		}
		out = append(out, Attribute{Name: value.Content[i].Value, Value: v})
	}
	*s = out
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

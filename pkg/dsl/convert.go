package dsl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-drift/sdui/pkg/layout"
)

// Parse reads a DSL layout file and converts it to a layout document.
func Parse(r io.Reader) (*layout.Document, error) {
	f, err := ParseFile("", r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	return f.Document()
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*layout.Document, error) {
	return Parse(strings.NewReader(input))
}

// Load reads and converts the DSL file at path.
func Load(path string) (*layout.Document, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	f, err := ParseFile(path, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	doc, err := f.Document()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Document converts the AST to a layout document and checks its version.
func (f *File) Document() (*layout.Document, error) {
	doc := &layout.Document{Layout: f.Root.Node()}
	for _, h := range f.Header {
		switch {
		case h.Version != nil:
			if doc.Version != "" {
				return nil, fmt.Errorf("%s: version declared twice", h.Pos)
			}
			doc.Version = string(*h.Version)
		case h.Style != nil:
			if doc.Styles == nil {
				doc.Styles = layout.Styles{}
			}
			if _, dup := doc.Styles[h.Style.Name]; dup {
				return nil, fmt.Errorf("%s: style %q declared twice", h.Style.Pos, h.Style.Name)
			}
			style := make(layout.Style, 0, len(h.Style.Attrs))
			for _, a := range h.Style.Attrs {
				style = append(style, layout.Attribute{Name: a.Key, Value: a.Value.Interface()})
			}
			doc.Styles[h.Style.Name] = style
		case h.Data != nil:
			if doc.Data != nil {
				return nil, fmt.Errorf("%s: data declared twice", h.Pos)
			}
			doc.Data = h.Data.Map()
		}
	}
	if err := layout.CheckVersion(doc.Version); err != nil {
		return nil, err
	}
	return doc, nil
}

// Node converts the element and its subtree, keeping member order.
func (e *Element) Node() *layout.Node {
	if e == nil {
		return nil
	}
	n := &layout.Node{Type: e.Type}
	for _, m := range e.Members {
		switch {
		case m.Attr != nil:
			n.Attributes = append(n.Attributes, layout.Attribute{Name: m.Attr.Key, Value: m.Attr.Value.Interface()})
		case m.Child != nil:
			n.Children = append(n.Children, m.Child.Node())
		}
	}
	return n
}

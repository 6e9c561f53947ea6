package widgets

import (
	"sync"

	"github.com/go-drift/sdui/pkg/binding"
	"github.com/go-drift/sdui/pkg/core"
	"github.com/go-drift/sdui/pkg/layout"
)

// PlaceholderListener keeps unknown content visible. An unknown node type
// becomes an empty <div data-unknown-type="..."> and an unknown attribute is
// recorded as a data-unknown-* attribute.
//
// In strict mode nothing is rendered for unknown content; it is only
// recorded, so callers can fail on Count.
type PlaceholderListener struct {
	Strict bool

	mu           sync.Mutex
	unknownTypes []string
	unknownAttrs []string
}

// OnUnknownViewType records typ and returns a placeholder element.
func (l *PlaceholderListener) OnUnknownViewType(typ string, parent core.Element, node *layout.Node, data core.DataContext, styles layout.Styles) core.Element {
	l.mu.Lock()
	l.unknownTypes = append(l.unknownTypes, typ)
	l.mu.Unlock()
	if l.Strict {
		return nil
	}
	el := NewElement("div")
	el.AddClass("sdui-unknown")
	el.SetAttr("data-unknown-type", typ)
	return el
}

// OnUnknownAttribute records attr and, outside strict mode, keeps its value
// on the element.
func (l *PlaceholderListener) OnUnknownAttribute(attr layout.Attribute, el core.Element) {
	name := attr.Name
	if e, ok := el.(*Element); ok {
		if typ := e.nodeType(); typ != "" {
			name = typ + "." + attr.Name
		}
		if !l.Strict {
			e.SetAttr("data-unknown-"+attr.Name, binding.Format(attr.Value))
		}
	}
	l.mu.Lock()
	l.unknownAttrs = append(l.unknownAttrs, name)
	l.mu.Unlock()
}

// UnknownTypes returns the unknown node types seen, in order.
func (l *PlaceholderListener) UnknownTypes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.unknownTypes...)
}

// UnknownAttributes returns the unknown attributes seen as "type.name".
func (l *PlaceholderListener) UnknownAttributes() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.unknownAttrs...)
}

// Count returns the number of unknown types and attributes seen.
func (l *PlaceholderListener) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.unknownTypes) + len(l.unknownAttrs)
}

// Reset forgets everything recorded.
func (l *PlaceholderListener) Reset() {
	l.mu.Lock()
	l.unknownTypes = nil
	l.unknownAttrs = nil
	l.mu.Unlock()
}

package widgets

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/go-drift/sdui/pkg/binding"
	"github.com/go-drift/sdui/pkg/core"
	"github.com/go-drift/sdui/pkg/errors"
	"github.com/go-drift/sdui/pkg/layout"
)

// AttributeFunc applies one resolved attribute value to an element. An error
// means the value was recognized but invalid.
type AttributeFunc func(el *Element, value any) error

// ViewHandler builds plain HTML elements and understands the attributes
// every view accepts. Other handlers embed it and add their own attributes.
type ViewHandler struct {
	core.HandlerBase

	// Tag is the HTML tag created for each node.
	Tag string
	// Class is added to every created element.
	Class string

	extra   map[string]AttributeFunc
	once    sync.Once
	attrs   map[string]AttributeFunc
	initial func(*Element)
}

// NewViewHandler creates a handler for tag with additional attributes on top
// of the view set. Extra attributes override view attributes of the same
// name.
func NewViewHandler(tag, class string, extra map[string]AttributeFunc) *ViewHandler {
	return &ViewHandler{Tag: tag, Class: class, extra: extra}
}

// PrepareAttributes builds the attribute table.
func (h *ViewHandler) PrepareAttributes() {
	h.once.Do(func() {
		h.attrs = viewAttributes()
		maps.Copy(h.attrs, h.extra)
	})
}

// Attributes returns the sorted attribute names the handler understands.
func (h *ViewHandler) Attributes() []string {
	h.PrepareAttributes()
	names := make([]string, 0, len(h.attrs)+1)
	for name := range h.attrs {
		names = append(names, name)
	}
	names = append(names, "style")
	slices.Sort(names)
	return names
}

// CreateElement creates the HTML element for node.
func (h *ViewHandler) CreateElement(parent core.Element, node *layout.Node, data core.DataContext, styles layout.Styles) core.Element {
	el := NewElement(h.Tag)
	el.AddClass("sdui-"+node.Type, h.Class)
	if h.initial != nil {
		h.initial(el)
	}
	return el
}

// ApplyAttribute resolves bindings against the element's data context and
// applies the attribute. "style" applies named bundles from the build's
// styles, in bundle order.
func (h *ViewHandler) ApplyAttribute(el core.Element, attr layout.Attribute) bool {
	e, ok := el.(*Element)
	if !ok {
		return false
	}
	h.PrepareAttributes()

	vm := e.ViewManager()
	var data core.DataContext
	if vm != nil {
		data = vm.DataContext
	}

	if attr.Name == "style" {
		return h.applyStyle(e, vm, attr.Value, data)
	}

	fn, ok := h.attrs[attr.Name]
	if !ok {
		return false
	}
	value, resolved := binding.Evaluate(attr.Value, data.Data, data.Index)
	if !resolved {
		value = nil
	}
	if err := fn(e, value); err != nil {
		errors.ReportErr("widgets.ApplyAttribute", errors.KindAttribute, e.nodeType(),
			fmt.Errorf("%s: %w", attr.Name, err))
	}
	return true
}

func (h *ViewHandler) applyStyle(e *Element, vm *core.ViewManager, value any, data core.DataContext) bool {
	resolved, _ := binding.Evaluate(value, data.Data, data.Index)
	var names []string
	switch v := resolved.(type) {
	case string:
		names = strings.Fields(v)
	case []any:
		for _, item := range v {
			names = append(names, binding.Format(item))
		}
	default:
		return false
	}

	var styles layout.Styles
	if vm != nil {
		styles = vm.Styles
	}
	applied := true
	for _, name := range names {
		bundle, ok := styles.Lookup(name)
		if !ok {
			applied = false
			continue
		}
		for _, attr := range bundle {
			if attr.Name == "style" {
				continue
			}
			if !h.ApplyAttribute(e, attr) && vm != nil && vm.Builder != nil {
				if l := vm.Builder.Listener(); l != nil {
					l.OnUnknownAttribute(attr, e)
				}
			}
		}
	}
	return applied
}

// MaterializeChild builds child with the parent's data and appends it.
func (h *ViewHandler) MaterializeChild(parent core.Element, child *layout.Node, b core.ChildBuilder) error {
	built, err := core.BuildChild(parent, child, b)
	if err != nil {
		return err
	}
	appendBuilt(parent.(*Element), built, nil)
	return nil
}

// appendBuilt attaches a built child to parent, inside wrap when non-nil.
func appendBuilt(parent *Element, built core.Element, wrap func() *Element) {
	if built == nil {
		return
	}
	child, ok := built.(*Element)
	if !ok {
		errors.ReportErr("widgets.MaterializeChild", errors.KindBuild, parent.nodeType(),
			fmt.Errorf("unsupported element %T", built))
		return
	}
	if wrap == nil {
		parent.AppendChild(child)
		return
	}
	w := wrap()
	parent.content.AppendChild(w.Node)
	parent.appendChildIn(child, w.Node)
}

// nodeType returns the layout type the element was built from, if known.
func (e *Element) nodeType() string {
	if vm := e.ViewManager(); vm != nil && vm.Layout != nil {
		return vm.Layout.Type
	}
	return ""
}

package core

import (
	"context"
	"image"

	"github.com/go-drift/sdui/pkg/layout"
)

// Handler knows how to construct and configure elements of one node type.
// A single handler instance serves every node of its type and must be safe
// for concurrent use by independent builds.
type Handler interface {
	// PrepareAttributes performs one-time setup of the attributes the handler
	// understands. The registry calls it on registration.
	PrepareAttributes()
	// OnBeforeCreate runs before the element exists.
	OnBeforeCreate(parent Element, node *layout.Node, data DataContext, styles layout.Styles)
	// CreateElement returns a new element that is not yet attached to parent.
	CreateElement(parent Element, node *layout.Node, data DataContext, styles layout.Styles) Element
	// OnAfterCreate runs once the element exists, before its view manager
	// is attached.
	OnAfterCreate(el Element, parent Element, node *layout.Node, data DataContext, styles layout.Styles)
	// ApplyAttribute applies one attribute and reports whether it was
	// consumed. Failures must be contained by the handler.
	ApplyAttribute(el Element, attr layout.Attribute) bool
	// MaterializeChild builds child through b and inserts the result into
	// parent in whatever way suits the node type.
	MaterializeChild(parent Element, child *layout.Node, b ChildBuilder) error
}

// ChildBuilder re-enters the build pipeline for a child node.
type ChildBuilder interface {
	Build(parent Element, node *layout.Node, data any, index int, styles layout.Styles) (Element, error)
}

// HandlerBase provides no-op lifecycle hooks. Embed it and implement
// CreateElement, ApplyAttribute and MaterializeChild.
type HandlerBase struct{}

// PrepareAttributes does nothing.
func (HandlerBase) PrepareAttributes() {}

// OnBeforeCreate does nothing.
func (HandlerBase) OnBeforeCreate(Element, *layout.Node, DataContext, layout.Styles) {}

// OnAfterCreate does nothing.
func (HandlerBase) OnAfterCreate(Element, Element, *layout.Node, DataContext, layout.Styles) {}

// BuildChild builds child with the parent's data context and styles. It is
// the usual first step of a MaterializeChild implementation.
func BuildChild(parent Element, child *layout.Node, b ChildBuilder) (Element, error) {
	vm := managerOf(parent)
	if vm == nil {
		return b.Build(parent, child, nil, 0, nil)
	}
	return b.Build(parent, child, vm.DataContext.Data, vm.DataContext.Index, vm.Styles)
}

// Listener is notified when the builder meets something no handler
// understands. It is optional.
type Listener interface {
	// OnUnknownViewType may return a fallback element for a node whose type
	// has no handler. The result is returned from Build verbatim.
	OnUnknownViewType(typ string, parent Element, node *layout.Node, data DataContext, styles layout.Styles) Element
	// OnUnknownAttribute is called when a handler declines an attribute.
	OnUnknownAttribute(attr layout.Attribute, el Element)
}

// IdGenerator maps string identifiers to stable, process-unique integers.
// The same string always yields the same integer; different strings never
// share one.
type IdGenerator interface {
	Unique(id string) int
}

// BitmapLoader resolves an image reference to a decoded bitmap.
type BitmapLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// BitmapTarget receives a resolved bitmap.
type BitmapTarget interface {
	// SetBitmap applies img to the element.
	SetBitmap(img image.Image)
	// Attached reports whether the element's subtree is still live. Late
	// asynchronous bitmaps are dropped for detached targets.
	Attached() bool
}

package core

import (
	"github.com/go-drift/sdui/pkg/layout"
)

// Element is a built visual object. The concrete toolkit decides what an
// element is; the builder only needs to bind a ViewManager to it.
type Element interface {
	ViewManager() *ViewManager
	SetViewManager(vm *ViewManager)
}

// ElementBase implements Element. Embed it in toolkit element types.
type ElementBase struct {
	viewManager *ViewManager
}

// ViewManager returns the manager attached by the builder, or nil.
func (e *ElementBase) ViewManager() *ViewManager {
	return e.viewManager
}

// SetViewManager binds vm to the element.
func (e *ElementBase) SetViewManager(vm *ViewManager) {
	e.viewManager = vm
}

// DataContext is the data visible to one node: the payload and the node's
// index when it is an item of a list.
type DataContext struct {
	Data  any
	Index int
}

// ViewManager is the per-element companion recording the element's
// provenance. It is created fresh by every build call and lives as long as
// the element.
type ViewManager struct {
	// Element is the element this manager belongs to.
	Element Element
	// Layout is the node the element was built from.
	Layout *layout.Node
	// DataContext is the data the node was built with.
	DataContext DataContext
	// Styles is the style set the node was built with.
	Styles layout.Styles
	// Handler is the handler that built the element.
	Handler Handler
	// Builder is the builder that produced the element.
	Builder *LayoutBuilder
	// Parent is the manager of the parent element, nil for a root.
	Parent *ViewManager
	// Depth is 0 for a root and grows by one per nesting level.
	Depth int
}

// Path describes the element's position as the chain of node types from the
// root, e.g. "container/list/text".
func (vm *ViewManager) Path() string {
	if vm == nil {
		return ""
	}
	typ := "?"
	if vm.Layout != nil && vm.Layout.Type != "" {
		typ = vm.Layout.Type
	}
	if vm.Parent == nil {
		return typ
	}
	return vm.Parent.Path() + "/" + typ
}

// Rebuild builds a fresh element from the same layout and styles with new
// data, keeping the original index.
func (vm *ViewManager) Rebuild(parent Element, data any) (Element, error) {
	return vm.Builder.Build(parent, vm.Layout, data, vm.DataContext.Index, vm.Styles)
}

// managerOf returns el's view manager, tolerating nil elements.
func managerOf(el Element) *ViewManager {
	if el == nil {
		return nil
	}
	return el.ViewManager()
}

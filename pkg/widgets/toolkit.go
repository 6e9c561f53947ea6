package widgets

import "github.com/go-drift/sdui/pkg/core"

// Handlers returns a fresh set of the toolkit's handlers keyed by node type.
func Handlers() map[string]core.Handler {
	return map[string]core.Handler{
		"view":      NewViewHandler("div", "", nil),
		"container": NewContainerHandler(),
		"text":      NewTextHandler("span"),
		"button":    NewTextHandler("button"),
		"image":     NewImageHandler(),
		"list":      NewListHandler(),
	}
}

// RegisterDefaults registers the toolkit's handlers with r.
func RegisterDefaults(r *core.Registry) {
	for typ, h := range Handlers() {
		r.Register(typ, h)
	}
}

// NewBuilder returns a layout builder with the toolkit's handlers
// registered. A nil generator gets a fresh one.
func NewBuilder(ids core.IdGenerator, opts ...core.Option) *core.LayoutBuilder {
	b := core.NewLayoutBuilder(ids, opts...)
	RegisterDefaults(b.Registry())
	return b
}

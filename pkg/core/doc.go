// Package core turns declarative layout trees into live element trees.
//
// A [LayoutBuilder] owns a [Registry] of [Handler] values keyed by node type.
// Building a node resolves its handler, lets the handler create the element,
// attaches a [ViewManager] recording where the element came from, applies the
// node's attributes in declaration order, and finally asks the handler to
// materialize each child. Handlers recurse by calling back into the builder,
// so every node in the tree goes through the same pipeline.
//
// # Failure Model
//
// Only a structurally malformed node stops a build: one without a type, or
// one nested deeper than [LayoutBuilder.MaxDepth] allows. It is returned as
// an [errors.LayoutError]. Unknown node types and attributes a
// handler declines are routed to the optional [Listener] and otherwise
// ignored, so one bad node never prevents the rest of a tree from rendering.
// Handler panics are recovered and reported to the global error handler.
//
// # Handlers
//
// Embed [HandlerBase] to get no-op hooks and implement the rest:
//
//	type textHandler struct {
//	    core.HandlerBase
//	}
//
//	func (textHandler) CreateElement(parent core.Element, node *layout.Node, data core.DataContext, styles layout.Styles) core.Element {
//	    return &myText{}
//	}
//
//	func (textHandler) ApplyAttribute(el core.Element, attr layout.Attribute) bool {
//	    if attr.Name != "content" {
//	        return false
//	    }
//	    el.(*myText).content = fmt.Sprint(attr.Value)
//	    return true
//	}
//
// # Concurrency
//
// Independent builds may run concurrently. The registry is guarded by a
// readers-writer lock so handlers can be registered at runtime, although
// registration is normally done once at startup.
package core

package core

import (
	"slices"
	"sync"
)

// Registry maps node types to handlers. It is safe for concurrent use and
// may be shared by several builders.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register prepares handler's attributes and stores it under typ, replacing
// any previous handler. A nil handler is ignored.
func (r *Registry) Register(typ string, handler Handler) {
	if handler == nil {
		debugf("ignoring nil handler for %q", typ)
		return
	}
	handler.PrepareAttributes()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[typ]; exists {
		debugf("overwriting handler for %q", typ)
	}
	r.handlers[typ] = handler
}

// Unregister removes the handler for typ, if any.
func (r *Registry) Unregister(typ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, typ)
}

// Lookup returns the handler registered for typ.
func (r *Registry) Lookup(typ string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[typ]
	return h, ok
}

// Types returns the registered types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	types := make([]string, 0, len(r.handlers))
	for typ := range r.handlers {
		types = append(types, typ)
	}
	r.mu.RUnlock()
	slices.Sort(types)
	return types
}

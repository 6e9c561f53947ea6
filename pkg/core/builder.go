package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-drift/sdui/pkg/errors"
	"github.com/go-drift/sdui/pkg/ids"
	"github.com/go-drift/sdui/pkg/layout"
)

// DefaultBitmapTimeout bounds a single bitmap load.
const DefaultBitmapTimeout = 10 * time.Second

// LayoutBuilder builds element trees from layout nodes using the handlers in
// its registry.
type LayoutBuilder struct {
	registry *Registry
	ids      IdGenerator

	mu            sync.RWMutex
	listener      Listener
	bitmapLoader  BitmapLoader
	synchronous   bool
	maxDepth      int
	bitmapTimeout time.Duration

	// pending counts in-flight asynchronous bitmap loads; idle is signalled
	// whenever it drops to zero.
	pendingMu sync.Mutex
	pending   int
	idle      sync.Cond
}

// Option configures a LayoutBuilder.
type Option func(*LayoutBuilder)

// WithRegistry makes the builder use a shared registry instead of its own.
func WithRegistry(r *Registry) Option {
	return func(b *LayoutBuilder) {
		if r != nil {
			b.registry = r
		}
	}
}

// WithListener sets the extensibility listener.
func WithListener(l Listener) Option {
	return func(b *LayoutBuilder) { b.listener = l }
}

// WithBitmapLoader sets the bitmap loader.
func WithBitmapLoader(l BitmapLoader) Option {
	return func(b *LayoutBuilder) { b.bitmapLoader = l }
}

// WithSynchronousRendering makes bitmaps resolve before Build returns.
func WithSynchronousRendering(enabled bool) Option {
	return func(b *LayoutBuilder) { b.synchronous = enabled }
}

// WithMaxDepth bounds tree depth; 0 means unbounded.
func WithMaxDepth(depth int) Option {
	return func(b *LayoutBuilder) { b.maxDepth = depth }
}

// WithBitmapTimeout bounds a single bitmap load.
func WithBitmapTimeout(d time.Duration) Option {
	return func(b *LayoutBuilder) {
		if d > 0 {
			b.bitmapTimeout = d
		}
	}
}

// NewLayoutBuilder creates a builder. A nil generator gets a fresh
// [ids.Generator].
func NewLayoutBuilder(idGenerator IdGenerator, opts ...Option) *LayoutBuilder {
	if idGenerator == nil {
		idGenerator = ids.NewGenerator()
	}
	b := &LayoutBuilder{
		registry:      NewRegistry(),
		ids:           idGenerator,
		bitmapTimeout: DefaultBitmapTimeout,
	}
	b.idle.L = &b.pendingMu
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the handler registry.
func (b *LayoutBuilder) Registry() *Registry {
	return b.registry
}

// RegisterHandler registers handler for typ. See [Registry.Register].
func (b *LayoutBuilder) RegisterHandler(typ string, handler Handler) {
	b.registry.Register(typ, handler)
}

// UnregisterHandler removes the handler for typ.
func (b *LayoutBuilder) UnregisterHandler(typ string) {
	b.registry.Unregister(typ)
}

// Handler returns the handler for typ, or nil.
func (b *LayoutBuilder) Handler(typ string) Handler {
	h, _ := b.registry.Lookup(typ)
	return h
}

// Build builds node and its subtree.
//
// It returns a nil element without error when the node's type has no handler
// and the listener supplies no fallback. The only error is a malformed layout
// ([errors.LayoutError]) anywhere in the subtree, which aborts the call.
func (b *LayoutBuilder) Build(parent Element, node *layout.Node, data any, index int, styles layout.Styles) (Element, error) {
	parentManager := managerOf(parent)

	if node == nil || node.Type == "" {
		return nil, b.malformed(parentManager, node, "'type' missing")
	}

	depth := 0
	if parentManager != nil {
		depth = parentManager.Depth + 1
	}
	if limit := b.MaxDepth(); limit > 0 && depth >= limit {
		return nil, b.malformed(parentManager, node, fmt.Sprintf("depth %d exceeds maximum %d", depth, limit))
	}

	dataContext := DataContext{Data: data, Index: index}

	handler, ok := b.registry.Lookup(node.Type)
	if !ok {
		return b.onUnknownViewType(node.Type, parent, node, dataContext, styles), nil
	}

	el := b.createElement(handler, parent, node, dataContext, styles)
	if el == nil {
		return nil, nil
	}

	viewManager := b.createViewManager(handler, parentManager, node, dataContext, styles, depth)
	viewManager.Element = el
	el.SetViewManager(viewManager)

	for _, attr := range node.Attributes {
		if !b.ApplyAttribute(handler, el, attr) {
			b.onUnknownAttribute(attr, el)
		}
	}

	for i, child := range node.Children {
		if err := b.handleChild(handler, el, child); err != nil {
			return nil, fmt.Errorf("%s: child %d: %w", node.Type, i, err)
		}
	}

	return el, nil
}

// createElement runs the before/create/after hooks. A panic or a nil element
// is reported and yields nil.
func (b *LayoutBuilder) createElement(handler Handler, parent Element, node *layout.Node, data DataContext, styles layout.Styles) (el Element) {
	defer func() {
		if r := recover(); r != nil {
			reportPanic("core.CreateElement", node.Type, r)
			el = nil
		}
	}()

	handler.OnBeforeCreate(parent, node, data, styles)
	el = handler.CreateElement(parent, node, data, styles)
	if el == nil {
		errors.ReportErr("core.CreateElement", errors.KindBuild, node.Type, fmt.Errorf("handler returned no element"))
		return nil
	}
	handler.OnAfterCreate(el, parent, node, data, styles)
	return el
}

func (b *LayoutBuilder) createViewManager(handler Handler, parent *ViewManager, node *layout.Node, data DataContext, styles layout.Styles, depth int) *ViewManager {
	if LoggingEnabled() {
		debugf("element created with %s (depth %d, index %d)", node.Type, depth, data.Index)
	}
	return &ViewManager{
		Layout:      node,
		DataContext: data,
		Styles:      styles,
		Handler:     handler,
		Builder:     b,
		Parent:      parent,
		Depth:       depth,
	}
}

func (b *LayoutBuilder) handleChild(handler Handler, el Element, child *layout.Node) (err error) {
	if LoggingEnabled() {
		debugf("materializing child of %s", el.ViewManager().Path())
	}
	defer errors.Recover("core.MaterializeChild")
	return handler.MaterializeChild(el, child, b)
}

// ApplyAttribute dispatches one attribute to handler and reports whether it
// was consumed. A panicking handler counts as not consuming it.
func (b *LayoutBuilder) ApplyAttribute(handler Handler, el Element, attr layout.Attribute) (consumed bool) {
	if LoggingEnabled() {
		debugf("handle %q: %v for element with %s", attr.Name, attr.Value, el.ViewManager().Path())
	}
	defer func() {
		if r := recover(); r != nil {
			reportPanic("core.ApplyAttribute", attr.Name, r)
			consumed = false
		}
	}()
	return handler.ApplyAttribute(el, attr)
}

func (b *LayoutBuilder) onUnknownAttribute(attr layout.Attribute, el Element) {
	if LoggingEnabled() {
		debugf("unknown attribute %q for element with %s", attr.Name, el.ViewManager().Path())
	}
	if l := b.Listener(); l != nil {
		l.OnUnknownAttribute(attr, el)
	}
}

func (b *LayoutBuilder) onUnknownViewType(typ string, parent Element, node *layout.Node, data DataContext, styles layout.Styles) Element {
	debugf("no handler for: %s", typ)
	if l := b.Listener(); l != nil {
		return l.OnUnknownViewType(typ, parent, node, data, styles)
	}
	return nil
}

func (b *LayoutBuilder) malformed(parent *ViewManager, node *layout.Node, reason string) *errors.LayoutError {
	path := layout.PathSegment(-1, node)
	if parent != nil {
		path = parent.Path() + "/" + path
	}
	serialized := "null"
	if node != nil {
		serialized = node.String()
	}
	return &errors.LayoutError{Reason: reason, Layout: serialized, Path: path}
}

// UniqueViewID returns the stable integer id for the string id. If the
// generator panics, for example because its id space is exhausted, the
// failure is reported with kind [errors.KindBuild] and 0 is returned.
func (b *LayoutBuilder) UniqueViewID(id string) (n int) {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportErr("core.UniqueViewID", errors.KindBuild, "", fmt.Errorf("%q: %v", id, r))
			n = 0
		}
	}()
	return b.ids.Unique(id)
}

// reportPanic reports a recovered handler panic. The op string is only
// assembled once something has panicked.
func reportPanic(op, subject string, r any) {
	errors.ReportPanic(&errors.PanicError{
		Op:         op + "(" + subject + ")",
		Value:      r,
		StackTrace: errors.CaptureStack(),
		Timestamp:  time.Now(),
	})
}

// IdGenerator returns the builder's id generator.
func (b *LayoutBuilder) IdGenerator() IdGenerator {
	return b.ids
}

// Listener returns the extensibility listener, or nil.
func (b *LayoutBuilder) Listener() Listener {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.listener
}

// SetListener sets the extensibility listener. Pass nil to remove it.
func (b *LayoutBuilder) SetListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listener = l
}

// BitmapLoader returns the bitmap loader, or nil.
func (b *LayoutBuilder) BitmapLoader() BitmapLoader {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bitmapLoader
}

// SetBitmapLoader sets the bitmap loader. Pass nil to disable images.
func (b *LayoutBuilder) SetBitmapLoader(l BitmapLoader) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bitmapLoader = l
}

// IsSynchronousRendering reports whether bitmaps resolve before Build returns.
func (b *LayoutBuilder) IsSynchronousRendering() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.synchronous
}

// SetSynchronousRendering controls bitmap resolution timing.
func (b *LayoutBuilder) SetSynchronousRendering(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.synchronous = enabled
}

// MaxDepth returns the depth bound; 0 means unbounded.
func (b *LayoutBuilder) MaxDepth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.maxDepth
}

// SetMaxDepth bounds tree depth. A root is at depth 0, so a maximum of n
// allows n levels. 0 removes the bound; negative values are reported and
// treated as 0.
func (b *LayoutBuilder) SetMaxDepth(depth int) {
	if depth < 0 {
		errors.ReportErr("core.SetMaxDepth", errors.KindConfig, "", fmt.Errorf("negative max depth %d", depth))
		depth = 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maxDepth = depth
}

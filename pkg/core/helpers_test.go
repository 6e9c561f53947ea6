package core

import (
	"fmt"
	"image"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-drift/sdui/pkg/errors"
	"github.com/go-drift/sdui/pkg/layout"
)

// testElement is a minimal element recording what was applied to it.
type testElement struct {
	ElementBase
	typ      string
	attrs    []string
	children []Element

	mu       sync.Mutex
	bitmap   image.Image
	detached atomic.Bool
}

func (e *testElement) SetBitmap(img image.Image) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bitmap = img
}

func (e *testElement) Bitmap() image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bitmap
}

func (e *testElement) Attached() bool {
	return !e.detached.Load()
}

// recordingHandler records every hook call in order. Attributes listed in
// known are consumed; "boom" panics; everything else is declined.
type recordingHandler struct {
	known    []string
	events   *[]string
	prepared int

	// sawManagerBeforeAttrs is false if any attribute was applied to an
	// element without a view manager.
	sawManagerBeforeAttrs bool
}

func newRecordingHandler(events *[]string, known ...string) *recordingHandler {
	return &recordingHandler{known: known, events: events, sawManagerBeforeAttrs: true}
}

func (h *recordingHandler) record(format string, args ...any) {
	if h.events != nil {
		*h.events = append(*h.events, fmt.Sprintf(format, args...))
	}
}

func (h *recordingHandler) PrepareAttributes() {
	h.prepared++
}

func (h *recordingHandler) OnBeforeCreate(parent Element, node *layout.Node, data DataContext, styles layout.Styles) {
	h.record("before:%s", node.Type)
}

func (h *recordingHandler) CreateElement(parent Element, node *layout.Node, data DataContext, styles layout.Styles) Element {
	h.record("create:%s", node.Type)
	return &testElement{typ: node.Type}
}

func (h *recordingHandler) OnAfterCreate(el Element, parent Element, node *layout.Node, data DataContext, styles layout.Styles) {
	h.record("after:%s", node.Type)
}

func (h *recordingHandler) ApplyAttribute(el Element, attr layout.Attribute) bool {
	if el.ViewManager() == nil {
		h.sawManagerBeforeAttrs = false
	}
	if attr.Name == "boom" {
		panic("attribute exploded")
	}
	if !slices.Contains(h.known, attr.Name) {
		return false
	}
	te := el.(*testElement)
	te.attrs = append(te.attrs, fmt.Sprintf("%s=%v", attr.Name, attr.Value))
	h.record("attr:%s", attr.Name)
	return true
}

func (h *recordingHandler) MaterializeChild(parent Element, child *layout.Node, b ChildBuilder) error {
	h.record("child:%s", child.Type)
	el, err := BuildChild(parent, child, b)
	if err != nil {
		return err
	}
	if el != nil {
		p := parent.(*testElement)
		p.children = append(p.children, el)
	}
	return nil
}

// recordingListener records unknown types and attributes and optionally
// returns a fallback element.
type recordingListener struct {
	fallback     Element
	unknownTypes []string
	unknownAttrs []string
}

func (l *recordingListener) OnUnknownViewType(typ string, parent Element, node *layout.Node, data DataContext, styles layout.Styles) Element {
	l.unknownTypes = append(l.unknownTypes, typ)
	return l.fallback
}

func (l *recordingListener) OnUnknownAttribute(attr layout.Attribute, el Element) {
	l.unknownAttrs = append(l.unknownAttrs, attr.Name)
}

// collectErrors installs a collecting error handler for the duration of a
// test and returns it with a restore function.
func collectErrors() (*errors.Collector, func()) {
	old := errors.DefaultHandler
	c := &errors.Collector{}
	errors.SetHandler(c)
	return c, func() { errors.SetHandler(old) }
}

func textNode(content string) *layout.Node {
	return &layout.Node{
		Type:       "text",
		Attributes: []layout.Attribute{{Name: "content", Value: content}},
	}
}

// nopHandler creates bare elements and declines every attribute.
type nopHandler struct {
	HandlerBase
}

func (nopHandler) CreateElement(Element, *layout.Node, DataContext, layout.Styles) Element {
	return &testElement{}
}

func (nopHandler) ApplyAttribute(Element, layout.Attribute) bool { return false }

func (nopHandler) MaterializeChild(parent Element, child *layout.Node, b ChildBuilder) error {
	_, err := BuildChild(parent, child, b)
	return err
}

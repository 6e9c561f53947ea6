package widgets

import (
	"image"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/sdui/pkg/core"
)

// Element is an element backed by an HTML node.
type Element struct {
	core.ElementBase

	// Node is the element's outermost HTML node.
	Node *html.Node

	// content receives child nodes. It is Node itself except for lists.
	content  *html.Node
	children []*Element
	parent   *Element

	// fitWidth and fitHeight bound an applied bitmap in pixels.
	fitWidth, fitHeight int

	// items holds a list's bound data.
	items []any

	mu        sync.Mutex
	bitmap    image.Image
	discarded atomic.Bool
}

// NewElement creates an element for the given tag.
func NewElement(tag string) *Element {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return &Element{Node: n, content: n}
}

// Tag returns the HTML tag name.
func (e *Element) Tag() string {
	return e.Node.Data
}

// Parent returns the enclosing element, or nil for a root.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns the child elements in order.
func (e *Element) Children() []*Element {
	return e.children
}

// AppendChild adds child after the existing children.
func (e *Element) AppendChild(child *Element) {
	e.appendChildIn(child, e.content)
}

func (e *Element) appendChildIn(child *Element, container *html.Node) {
	if child.Node.Parent != nil {
		child.Node.Parent.RemoveChild(child.Node)
	}
	container.AppendChild(child.Node)
	child.parent = e
	e.children = append(e.children, child)
}

// Attr returns the value of an HTML attribute.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Node.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an HTML attribute, replacing any previous value.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.Node.Attr {
		if a.Key == key {
			e.Node.Attr[i].Val = val
			return
		}
	}
	e.Node.Attr = append(e.Node.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an HTML attribute.
func (e *Element) RemoveAttr(key string) {
	for i, a := range e.Node.Attr {
		if a.Key == key {
			e.Node.Attr = append(e.Node.Attr[:i], e.Node.Attr[i+1:]...)
			return
		}
	}
}

// AddClass appends class names that are not already present.
func (e *Element) AddClass(names ...string) {
	current, _ := e.Attr("class")
	classes := strings.Fields(current)
	for _, name := range names {
		for _, c := range strings.Fields(name) {
			if !slices.Contains(classes, c) {
				classes = append(classes, c)
			}
		}
	}
	e.SetAttr("class", strings.Join(classes, " "))
}

// Style returns one inline style property.
func (e *Element) Style(prop string) (string, bool) {
	current, _ := e.Attr("style")
	for _, decl := range splitStyle(current) {
		if decl[0] == prop {
			return decl[1], true
		}
	}
	return "", false
}

// SetStyle sets one inline style property, keeping declaration order.
func (e *Element) SetStyle(prop, value string) {
	current, _ := e.Attr("style")
	decls := splitStyle(current)
	replaced := false
	for i := range decls {
		if decls[i][0] == prop {
			decls[i][1] = value
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, [2]string{prop, value})
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d[0] + ":" + d[1]
	}
	e.SetAttr("style", strings.Join(parts, ";"))
}

func splitStyle(s string) [][2]string {
	var decls [][2]string
	for _, part := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		decls = append(decls, [2]string{strings.TrimSpace(prop), strings.TrimSpace(val)})
	}
	return decls
}

// SetText replaces the element's text content, keeping element children.
func (e *Element) SetText(text string) {
	for c := e.content.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode {
			e.content.RemoveChild(c)
		}
		c = next
	}
	tn := &html.Node{Type: html.TextNode, Data: text}
	e.content.InsertBefore(tn, e.content.FirstChild)
}

// Text returns the concatenated text directly inside the element.
func (e *Element) Text() string {
	var b strings.Builder
	for c := e.content.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// SetBitmap stores a loaded bitmap. It is written into the HTML at render
// time.
func (e *Element) SetBitmap(img image.Image) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bitmap = img
}

// Bitmap returns the loaded bitmap, or nil.
func (e *Element) Bitmap() image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bitmap
}

// Attached reports whether the element is still part of a live tree.
func (e *Element) Attached() bool {
	return !e.discarded.Load()
}

// Walk visits e and its descendants depth-first.
func (e *Element) Walk(visit func(*Element) bool) {
	if e == nil || !visit(e) {
		return
	}
	for _, c := range e.children {
		c.Walk(visit)
	}
}

// Discard detaches el from its parent and marks its subtree dead, so
// bitmaps still loading for it are dropped.
func Discard(el core.Element) {
	e, ok := el.(*Element)
	if !ok || e == nil {
		return
	}
	wrapper := e.Node.Parent
	if wrapper != nil {
		wrapper.RemoveChild(e.Node)
	}
	if p := e.parent; p != nil {
		// List items sit inside an <li> owned by the list.
		if wrapper != nil && wrapper != p.content && wrapper.Parent == p.content {
			p.content.RemoveChild(wrapper)
		}
		for i, c := range p.children {
			if c == e {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
		e.parent = nil
	}
	e.Walk(func(d *Element) bool {
		d.discarded.Store(true)
		return true
	})
}

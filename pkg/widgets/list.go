package widgets

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/sdui/pkg/core"
	"github.com/go-drift/sdui/pkg/errors"
	"github.com/go-drift/sdui/pkg/layout"
)

// ListHandler builds "list" nodes. Each child node is a template built once
// per item of the items attribute, with the item as data and its position
// as index.
type ListHandler struct {
	*ViewHandler
}

// NewListHandler returns the handler for "list".
func NewListHandler() *ListHandler {
	h := &ListHandler{NewViewHandler("div", "", map[string]AttributeFunc{
		"items": applyItems,
	})}
	h.initial = func(el *Element) {
		ul := &html.Node{Type: html.ElementNode, Data: "ul", DataAtom: atom.Ul}
		el.Node.AppendChild(ul)
		el.content = ul
	}
	return h
}

func applyItems(el *Element, value any) error {
	switch v := value.(type) {
	case nil:
		el.items = nil
	case []any:
		el.items = v
	default:
		return fmt.Errorf("items must be a list, got %T", value)
	}
	return nil
}

// MaterializeChild builds the template child for every item, each inside its
// own <li>.
func (h *ListHandler) MaterializeChild(parent core.Element, child *layout.Node, b core.ChildBuilder) error {
	list := parent.(*Element)
	var styles layout.Styles
	if vm := list.ViewManager(); vm != nil {
		styles = vm.Styles
	}
	for i, item := range list.items {
		built, err := b.Build(list, child, item, i, styles)
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		appendBuilt(list, built, func() *Element { return NewElement("li") })
	}
	if list.items == nil {
		errors.ReportErr("widgets.MaterializeChild", errors.KindAttribute, "list",
			fmt.Errorf("template %s has no items", layout.PathSegment(-1, child)))
	}
	return nil
}

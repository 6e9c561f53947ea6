package widgets

import (
	"fmt"

	"github.com/go-drift/sdui/pkg/core"
	"github.com/go-drift/sdui/pkg/errors"
	"github.com/go-drift/sdui/pkg/layout"
)

// ImageHandler builds "image" nodes. The src reference is kept on the
// element and, when the builder has a bitmap loader, loaded through it.
type ImageHandler struct {
	*ViewHandler
}

// NewImageHandler returns the handler for "image".
func NewImageHandler() *ImageHandler {
	return &ImageHandler{NewViewHandler("img", "", map[string]AttributeFunc{
		"src":    applySrc,
		"alt":    htmlAttr("alt"),
		"width":  imageSize("width"),
		"height": imageSize("height"),
	})}
}

// MaterializeChild rejects children: an image has no content.
func (h *ImageHandler) MaterializeChild(parent core.Element, child *layout.Node, b core.ChildBuilder) error {
	errors.ReportErr("widgets.MaterializeChild", errors.KindBuild, "image",
		fmt.Errorf("image cannot have children, dropping %s", layout.PathSegment(-1, child)))
	return nil
}

func applySrc(el *Element, value any) error {
	ref, err := text(value)
	if err != nil {
		return err
	}
	if ref == "" {
		return fmt.Errorf("empty src")
	}
	el.SetAttr("src", ref)
	if vm := el.ViewManager(); vm != nil && vm.Builder != nil {
		vm.Builder.LoadBitmap(ref, el)
	}
	return nil
}

// imageSize sets the CSS size and records the pixel bound used to scale an
// embedded bitmap.
func imageSize(prop string) AttributeFunc {
	css := styleDimension(prop)
	return func(el *Element, value any) error {
		if err := css(el, value); err != nil {
			return err
		}
		px := pixels(value)
		if prop == "width" {
			el.fitWidth = px
		} else {
			el.fitHeight = px
		}
		return nil
	}
}

package widgets

import "fmt"

// NewContainerHandler returns the handler for "container": a flex box whose
// children run vertically unless orientation is "horizontal".
func NewContainerHandler() *ViewHandler {
	h := NewViewHandler("div", "", map[string]AttributeFunc{
		"orientation": applyOrientation,
		"spacing":     styleDimension("gap"),
		"gravity":     applyGravity,
	})
	h.initial = func(el *Element) {
		el.SetStyle("display", "flex")
		el.SetStyle("flex-direction", "column")
	}
	return h
}

func applyOrientation(el *Element, value any) error {
	v, err := text(value)
	if err != nil {
		return err
	}
	switch v {
	case "vertical":
		el.SetStyle("flex-direction", "column")
	case "horizontal":
		el.SetStyle("flex-direction", "row")
	default:
		return fmt.Errorf("unknown orientation %q", v)
	}
	return nil
}

// applyGravity aligns children on the cross axis.
func applyGravity(el *Element, value any) error {
	v, err := text(value)
	if err != nil {
		return err
	}
	align := map[string]string{
		"start":  "flex-start",
		"center": "center",
		"end":    "flex-end",
		"fill":   "stretch",
	}[v]
	if align == "" {
		return fmt.Errorf("unknown gravity %q", v)
	}
	el.SetStyle("align-items", align)
	return nil
}

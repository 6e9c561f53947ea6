package widgets

import "fmt"

// NewTextHandler returns the handler for "text", rendered as tag.
func NewTextHandler(tag string) *ViewHandler {
	return NewViewHandler(tag, "", map[string]AttributeFunc{
		"content":   applyContent,
		"text":      applyContent,
		"textColor": styleColor("color"),
		"textSize":  styleDimension("font-size"),
		"textStyle": applyTextStyle,
		"maxLines":  applyMaxLines,
	})
}

// applyContent sets the text. A value that failed to resolve renders empty.
func applyContent(el *Element, value any) error {
	if value == nil {
		el.SetText("")
		return nil
	}
	s, err := text(value)
	if err != nil {
		return err
	}
	el.SetText(s)
	return nil
}

func applyTextStyle(el *Element, value any) error {
	v, err := text(value)
	if err != nil {
		return err
	}
	switch v {
	case "normal":
	case "bold":
		el.SetStyle("font-weight", "bold")
	case "italic":
		el.SetStyle("font-style", "italic")
	case "bold|italic", "italic|bold":
		el.SetStyle("font-weight", "bold")
		el.SetStyle("font-style", "italic")
	default:
		return fmt.Errorf("unknown text style %q", v)
	}
	return nil
}

func applyMaxLines(el *Element, value any) error {
	n, err := number(value)
	if err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("maxLines must be positive, got %v", n)
	}
	el.SetStyle("display", "-webkit-box")
	el.SetStyle("-webkit-box-orient", "vertical")
	el.SetStyle("-webkit-line-clamp", fmt.Sprint(int(n)))
	el.SetStyle("overflow", "hidden")
	return nil
}

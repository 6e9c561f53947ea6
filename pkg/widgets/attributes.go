package widgets

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-drift/sdui/pkg/binding"
)

// viewAttributes returns the attributes every view understands.
func viewAttributes() map[string]AttributeFunc {
	return map[string]AttributeFunc{
		"id":         applyID,
		"class":      applyClass,
		"visibility": applyVisibility,
		"background": styleColor("background-color"),
		"padding":    styleDimension("padding"),
		"margin":     styleDimension("margin"),
		"width":      styleDimension("width"),
		"height":     styleDimension("height"),
		"opacity":    applyOpacity,
		"onClick":    applyAction,
		"title":      htmlAttr("title"),
	}
}

func applyID(el *Element, value any) error {
	id, err := text(value)
	if err != nil {
		return err
	}
	el.SetAttr("id", id)
	if vm := el.ViewManager(); vm != nil && vm.Builder != nil {
		el.SetAttr("data-view-id", strconv.Itoa(vm.Builder.UniqueViewID(id)))
	}
	return nil
}

func applyClass(el *Element, value any) error {
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			el.AddClass(binding.Format(item))
		}
		return nil
	default:
		name, err := text(value)
		if err != nil {
			return err
		}
		el.AddClass(name)
		return nil
	}
}

func applyVisibility(el *Element, value any) error {
	v, err := text(value)
	if err != nil {
		return err
	}
	switch v {
	case "visible":
	case "invisible":
		el.SetStyle("visibility", "hidden")
	case "gone":
		el.SetStyle("display", "none")
	default:
		return fmt.Errorf("unknown visibility %q", v)
	}
	return nil
}

func applyOpacity(el *Element, value any) error {
	f, err := number(value)
	if err != nil {
		return err
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("opacity %v out of range [0, 1]", f)
	}
	el.SetStyle("opacity", strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// applyAction records a click action for the host page. Structured actions
// are encoded as JSON.
func applyAction(el *Element, value any) error {
	switch v := value.(type) {
	case nil:
		return fmt.Errorf("missing value")
	case string:
		el.SetAttr("data-action", v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		el.SetAttr("data-action", string(data))
	}
	return nil
}

func htmlAttr(key string) AttributeFunc {
	return func(el *Element, value any) error {
		v, err := text(value)
		if err != nil {
			return err
		}
		el.SetAttr(key, v)
		return nil
	}
}

func styleColor(prop string) AttributeFunc {
	return func(el *Element, value any) error {
		c, err := color(value)
		if err != nil {
			return err
		}
		el.SetStyle(prop, c)
		return nil
	}
}

func styleDimension(prop string) AttributeFunc {
	return func(el *Element, value any) error {
		d, err := dimension(value)
		if err != nil {
			return err
		}
		el.SetStyle(prop, d)
		return nil
	}
}

// text converts a scalar value to a string.
func text(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", fmt.Errorf("missing value")
	case map[string]any, map[any]any, []any:
		return "", fmt.Errorf("expected a scalar, got %T", value)
	default:
		return binding.Format(v), nil
	}
}

func number(value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", value)
	}
}

// dimension converts a size to CSS. Bare numbers and dp/sp units are pixels;
// match_parent and wrap_content map to 100% and auto.
func dimension(value any) (string, error) {
	switch v := value.(type) {
	case int, int64, float64:
		f, _ := number(v)
		return strconv.FormatFloat(f, 'f', -1, 64) + "px", nil
	case string:
		s := strings.TrimSpace(v)
		switch s {
		case "":
			return "", fmt.Errorf("empty dimension")
		case "match_parent", "fill_parent":
			return "100%", nil
		case "wrap_content":
			return "auto", nil
		}
		parts := strings.Fields(s)
		for i, p := range parts {
			parts[i] = cssLength(p)
		}
		return strings.Join(parts, " "), nil
	default:
		return "", fmt.Errorf("expected a dimension, got %T", value)
	}
}

func cssLength(s string) string {
	for _, unit := range []string{"dp", "sp"} {
		if n, ok := strings.CutSuffix(s, unit); ok {
			if _, err := strconv.ParseFloat(n, 64); err == nil {
				return n + "px"
			}
		}
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s + "px"
	}
	return s
}

// pixels converts a dimension to whole pixels, or 0 when it has no fixed
// pixel size.
func pixels(value any) int {
	d, err := dimension(value)
	if err != nil {
		return 0
	}
	n, ok := strings.CutSuffix(d, "px")
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f + 0.5)
}

// color converts a color to CSS. Eight digit hex colors are read as
// #AARRGGBB.
func color(value any) (string, error) {
	s, err := text(value)
	if err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty color")
	}
	if !strings.HasPrefix(s, "#") {
		return s, nil
	}
	hex := s[1:]
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return "", fmt.Errorf("invalid color %q", s)
	}
	switch len(hex) {
	case 3, 6:
		return strings.ToLower(s), nil
	case 8:
		argb, _ := strconv.ParseUint(hex, 16, 32)
		a := float64(argb>>24) / 255
		r, g, b := (argb>>16)&0xff, (argb>>8)&0xff, argb&0xff
		return fmt.Sprintf("rgba(%d,%d,%d,%s)", r, g, b, strconv.FormatFloat(a, 'f', 3, 64)), nil
	default:
		return "", fmt.Errorf("invalid color %q", s)
	}
}

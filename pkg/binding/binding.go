// Package binding resolves "${path}" expressions in attribute values against
// the data context of the node being built.
//
// Paths are dot separated with optional list indexes: "${user.tags[0]}".
// Two names are reserved: "${.}" is the data itself and "${index}" is the
// node's index in its data context.
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// IsExpression reports whether s is exactly one binding expression.
func IsExpression(s string) bool {
	loc := exprPattern.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// Evaluate resolves value against data. A string that is exactly one
// expression yields the resolved value itself (which may be a list or map);
// other strings are interpolated; non-string values are returned unchanged.
// An unresolvable whole-value expression yields nil, false.
func Evaluate(value any, data any, index int) (any, bool) {
	s, ok := value.(string)
	if !ok {
		return value, true
	}
	if IsExpression(s) {
		path := strings.TrimSpace(s[2 : len(s)-1])
		return lookup(data, index, path)
	}
	return Interpolate(s, data, index), true
}

// Interpolate replaces every ${path} in text with the matching value from
// data. Unresolvable expressions are left in place.
func Interpolate(text string, data any, index int) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path := strings.TrimSpace(groups[1])
		if path == "" {
			return match
		}
		if val, ok := lookup(data, index, path); ok {
			return Format(val)
		}
		return match
	})
}

// Format renders a resolved value as text.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

func lookup(data any, index int, path string) (any, bool) {
	switch path {
	case "index":
		return index, true
	case ".":
		return data, data != nil
	}
	if data == nil {
		return nil, false
	}
	return Resolve(data, path)
}

// Resolve walks path through nested maps and lists.
func Resolve(data any, path string) (any, bool) {
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := segment
	var indexes []string
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[any]any:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok || idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}

// Package dsl parses the compact text layout format.
//
//	version "v1.2.0"
//
//	style title {
//	  textSize: 20px
//	  textColor: #333
//	}
//
//	data {
//	  user: { name: "Ada" }
//	  items: ["tea", "coffee"]
//	}
//
//	container {
//	  orientation: vertical
//	  text { content: "Hello ${user.name}"; style: title }
//	  list {
//	    items: "${items}"
//	    text { content: "${index}: ${.}" }
//	  }
//	}
//
// A block member of the form "name: value" is an attribute; "name { ... }"
// is a child node. The words version, style and data are reserved at the top
// level. Numbers with a unit (20px, 50%) stay strings.
package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:px|dp|sp|pt|em|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][:,;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// File is the root AST node of a layout file.
type File struct {
	Pos    lexer.Position `parser:""`
	Header []*Header      `parser:"Newline* ( @@ Newline* )*"`
	Root   *Element       `parser:"@@ Newline*"`
}

// Header is a top-level declaration preceding the root node.
type Header struct {
	Pos     lexer.Position `parser:""`
	Version *StringLiteral `parser:"  'version' @String"`
	Style   *StyleDecl     `parser:"| @@"`
	Data    *Object        `parser:"| 'data' @@"`
}

// StyleDecl declares a named attribute bundle.
type StyleDecl struct {
	Pos   lexer.Position `parser:""`
	Name  string         `parser:"'style' @Ident"`
	Attrs []*Attr        `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Element is a layout node: a type followed by a block of attributes and
// children.
type Element struct {
	Pos     lexer.Position `parser:""`
	Type    string         `parser:"@Ident"`
	Members []*Member      `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Member is one entry of an element block.
type Member struct {
	Attr  *Attr    `parser:"  @@"`
	Child *Element `parser:"| @@"`
}

// Attr is a "name: value" pair.
type Attr struct {
	Pos   lexer.Position `parser:""`
	Key   string         `parser:"@Ident ':' Newline*"`
	Value *Value         `parser:"@@"`
}

// Value is an attribute or data value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Bool   *Boolean       `parser:"| @('true' | 'false')"`
	Null   bool           `parser:"| @'null'"`
	Ident  *string        `parser:"| @Ident"`
	Array  *Array         `parser:"| @@"`
	Object *Object        `parser:"| @@"`
}

// Array is a "[ ... ]" list of values.
type Array struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? ','? Newline* ']'"`
}

// Object is a "{ key: value ... }" map.
type Object struct {
	Entries []*Attr `parser:"'{' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? ','? Newline* '}'"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Boolean captures true/false keywords.
type Boolean bool

// Capture implements participle.Capture.
func (b *Boolean) Capture(values []string) error {
	*b = len(values) > 0 && values[0] == "true"
	return nil
}

// ParseFile parses DSL content from r. name is used in error positions.
func ParseFile(name string, r io.Reader) (*File, error) {
	return fileParser.Parse(name, r)
}

// ParseFileString parses DSL content from a string.
func ParseFileString(name, input string) (*File, error) {
	return fileParser.ParseString(name, input)
}

// Interface converts v to the plain Go value a decoded YAML document would
// hold: string, int, float64, bool, nil, []any or map[string]any.
func (v *Value) Interface() any {
	switch {
	case v == nil || v.Null:
		return nil
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return number(*v.Number)
	case v.Color != nil:
		return *v.Color
	case v.Bool != nil:
		return bool(*v.Bool)
	case v.Ident != nil:
		return *v.Ident
	case v.Array != nil:
		out := make([]any, 0, len(v.Array.Values))
		for _, item := range v.Array.Values {
			out = append(out, item.Interface())
		}
		return out
	case v.Object != nil:
		return v.Object.Map()
	default:
		return nil
	}
}

// Map converts the object to a map. Later keys win.
func (o *Object) Map() map[string]any {
	out := make(map[string]any, len(o.Entries))
	for _, e := range o.Entries {
		out[e.Key] = e.Value.Interface()
	}
	return out
}

func number(raw string) any {
	if strings.ContainsAny(raw, "pxdspte%") {
		return raw
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

package layout

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const sampleDocument = `
version: v1.0.0
styles:
  title:
    textSize: 20px
    textColor: "#333"
data:
  user:
    name: Ada
layout:
  type: container
  orientation: vertical
  id: root
  children:
    - type: text
      style: title
      content: ${user.name}
    - type: image
      src: logo.png
`

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeBytes([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	if doc.Version != "v1.0.0" {
		t.Errorf("Version = %q, want %q", doc.Version, "v1.0.0")
	}
	root := doc.Layout
	if root.Type != "container" {
		t.Errorf("root.Type = %q, want container", root.Type)
	}
	wantAttrs := []Attribute{{Name: "orientation", Value: "vertical"}, {Name: "id", Value: "root"}}
	if !reflect.DeepEqual(root.Attributes, wantAttrs) {
		t.Errorf("root.Attributes = %#v, want %#v", root.Attributes, wantAttrs)
	}
	if len(root.Children) != 2 {
		t.Fatalf("len(root.Children) = %d, want 2", len(root.Children))
	}
	if got := root.Children[1].Type; got != "image" {
		t.Errorf("second child type = %q, want image", got)
	}

	title, ok := doc.Styles.Lookup("title")
	if !ok {
		t.Fatal("style 'title' not decoded")
	}
	if title[0].Name != "textSize" || title[1].Name != "textColor" {
		t.Errorf("style order = %v, want textSize then textColor", title)
	}

	data, ok := doc.Data.(map[string]any)
	if !ok {
		t.Fatalf("Data = %T, want map[string]any", doc.Data)
	}
	if _, ok := data["user"]; !ok {
		t.Error("data.user missing")
	}
}

func TestDecodeAttributeOrderIsPreserved(t *testing.T) {
	src := `{"type":"text","z":1,"a":2,"m":3,"content":"hi"}`
	doc, err := DecodeBytes([]byte(src))
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	var names []string
	for _, attr := range doc.Layout.Attributes {
		names = append(names, attr.Name)
	}
	want := []string{"z", "a", "m", "content"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("attribute order = %v, want %v", names, want)
	}
}

func TestDecodeBareNodeWithoutType(t *testing.T) {
	doc, err := DecodeBytes([]byte("layout:\n  content: hi\n"))
	if err != nil {
		t.Fatalf("DecodeBytes() error = %v", err)
	}
	if doc.Layout.Type != "" {
		t.Errorf("Type = %q, want empty", doc.Layout.Type)
	}
	if problems := Validate(doc.Layout); len(problems) != 1 {
		t.Errorf("Validate() = %d problems, want 1", len(problems))
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty", "", "empty layout document"},
		{"scalar", "hello", "must be a mapping"},
		{"no layout", "version: v1.0.0\n", "no 'layout' node"},
		{"children not list", "type: container\nchildren: 3\n", "'children' must be a list"},
		{"type not scalar", "type: [a]\n", "'type' must be a string"},
		{"newer version", "version: v1.9.0\nlayout:\n  type: text\n", "newer than supported"},
		{"other major", "version: v2.0.0\nlayout:\n  type: text\n", "incompatible"},
		{"bad version", "version: banana\nlayout:\n  type: text\n", "invalid layout version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes([]byte(tt.input))
			if err == nil {
				t.Fatalf("DecodeBytes(%q) expected error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		version string
		wantErr bool
	}{
		{"", false},
		{"v1.0.0", false},
		{"1.1.0", false},
		{SchemaVersion, false},
		{"v1", false},
		{"v0.9.0", true},
		{"v1.3.0", true},
		{"nope", true},
	}
	for _, tt := range tests {
		err := CheckVersion(tt.version)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckVersion(%q) error = %v, wantErr %v", tt.version, err, tt.wantErr)
		}
	}
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screen.yaml")
	if err := os.WriteFile(path, []byte(sampleDocument), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if doc.Layout.Type != "container" {
		t.Errorf("Type = %q, want container", doc.Layout.Type)
	}

	if _, err := DecodeFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("DecodeFile(missing) expected error")
	}
}

func TestNodeString(t *testing.T) {
	n := &Node{
		Type:       "text",
		Attributes: []Attribute{{Name: "content", Value: "hi"}, {Name: "size", Value: 12}},
		Children:   []*Node{{Type: "span"}},
	}
	want := `{"type":"text","content":"hi","size":12,"children":[{"type":"span"}]}`
	if got := n.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}

	missing := &Node{Attributes: []Attribute{{Name: "content", Value: "hi"}}}
	if got := missing.String(); got != `{"content":"hi"}` {
		t.Errorf("String() = %s, want {\"content\":\"hi\"}", got)
	}
}

func TestNodeStringNestedMapAnyKeys(t *testing.T) {
	n := &Node{Type: "x", Attributes: []Attribute{{Name: "m", Value: map[any]any{1: "a"}}}}
	if got := n.String(); got != `{"type":"x","m":{"1":"a"}}` {
		t.Errorf("String() = %s", got)
	}
}

func TestWalkAndTypes(t *testing.T) {
	root := &Node{
		Type: "container",
		Children: []*Node{
			{Type: "text"},
			{Type: "container", Children: []*Node{{Type: "image"}, {Type: "text"}}},
		},
	}
	var paths []string
	root.Walk(func(path string, n *Node) bool {
		paths = append(paths, path)
		return true
	})
	want := []string{"container", "container/0:text", "container/1:container", "container/1:container/0:image", "container/1:container/1:text"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	if got := Types(root); !reflect.DeepEqual(got, []string{"container", "text", "image"}) {
		t.Errorf("Types() = %v", got)
	}
}

func TestValidateNilChild(t *testing.T) {
	root := &Node{Type: "container", Children: []*Node{nil}}
	problems := Validate(root)
	if len(problems) != 1 {
		t.Fatalf("Validate() = %d problems, want 1", len(problems))
	}
	if problems[0].Path != "container/0:?" {
		t.Errorf("Path = %q", problems[0].Path)
	}
}

func TestNodeAttribute(t *testing.T) {
	n := &Node{Attributes: []Attribute{{Name: "a", Value: 1}, {Name: "a", Value: 2}}}
	v, ok := n.Attribute("a")
	if !ok || v != 1 {
		t.Errorf("Attribute(a) = %v, %v; want 1, true", v, ok)
	}
	if _, ok := n.Attribute("b"); ok {
		t.Error("Attribute(b) should be absent")
	}
	var nilNode *Node
	if _, ok := nilNode.Attribute("a"); ok {
		t.Error("nil node should have no attributes")
	}
}

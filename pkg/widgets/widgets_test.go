package widgets_test

import (
	"bytes"
	"context"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/sdui/pkg/core"
	"github.com/go-drift/sdui/pkg/errors"
	"github.com/go-drift/sdui/pkg/layout"
	sduitest "github.com/go-drift/sdui/pkg/testing"
	"github.com/go-drift/sdui/pkg/widgets"
)

func TestTextBinding(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: text
  content: Hello ${user.name}
  textColor: "#FF0000"
data:
  user:
    name: Ada
`))
	assert.Equal(t, `<span class="sdui-text" style="color:#ff0000">Hello Ada</span>`, tester.HTML())
	assert.True(t, tester.Find(sduitest.ByText("Hello Ada")).Exists())
}

func TestContainerOrientation(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: container
  orientation: horizontal
  children:
    - type: text
      content: a
    - type: text
      content: b
`))
	assert.Equal(t,
		`<div class="sdui-container" style="display:flex;flex-direction:row">`+
			`<span class="sdui-text">a</span><span class="sdui-text">b</span></div>`,
		tester.HTML())
	assert.Equal(t, 2, tester.Find(sduitest.ByType("text")).Count())
}

func TestListMaterializesTemplatePerItem(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: list
  items: "${items}"
  children:
    - type: text
      content: "${index}: ${.}"
data:
  items: [tea, coffee]
`))
	assert.Equal(t,
		`<div class="sdui-list"><ul>`+
			`<li><span class="sdui-text">0: tea</span></li>`+
			`<li><span class="sdui-text">1: coffee</span></li>`+
			`</ul></div>`,
		tester.HTML())

	items := tester.Find(sduitest.ByType("text")).All()
	require.Len(t, items, 2)
	vm := items[1].ViewManager()
	assert.Equal(t, "coffee", vm.DataContext.Data)
	assert.Equal(t, 1, vm.DataContext.Index)
	assert.Equal(t, "list/text", vm.Path())
}

func TestListWithoutItemsReportsError(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: list
  items: "${missing}"
  children:
    - type: text
      content: never
`))
	assert.Equal(t, 0, tester.Find(sduitest.ByType("text")).Count())
	assert.Equal(t, 1, tester.ErrorCount(errors.KindAttribute))
}

func TestUnknownContentPlaceholders(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: container
  children:
    - type: text
      content: hi
      sparkle: true
    - type: chart
      kind: pie
`))
	assert.True(t, tester.Find(sduitest.ByUnknownType("chart")).Exists())

	text := tester.Find(sduitest.ByType("text")).First()
	v, ok := text.Attr("data-unknown-sparkle")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	assert.Equal(t, []string{"chart"}, tester.Listener().UnknownTypes())
	assert.Equal(t, []string{"text.sparkle"}, tester.Listener().UnknownAttributes())
	assert.Equal(t, 2, tester.Listener().Count())
	assert.Contains(t, tester.HTML(), `<div class="sdui-unknown" data-unknown-type="chart"></div>`)
}

func TestStrictListenerDropsUnknownContent(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	tester.Listener().Strict = true
	require.NoError(t, tester.PumpYAML(`
layout:
  type: container
  children:
    - type: chart
    - type: text
      content: hi
      sparkle: true
`))
	assert.Equal(t, `<div class="sdui-container" style="display:flex;flex-direction:column"><span class="sdui-text">hi</span></div>`, tester.HTML())
	assert.Equal(t, 2, tester.Listener().Count())

	tester.Listener().Reset()
	assert.Zero(t, tester.Listener().Count())
}

func TestStyleBundles(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
styles:
  title:
    textSize: 20
    textColor: "#333"
  muted:
    opacity: 0.5
layout:
  type: container
  children:
    - type: text
      style: title muted
      content: Hi
    - type: text
      style: missing
      content: Lo
`))
	texts := tester.Find(sduitest.ByType("text")).All()
	require.Len(t, texts, 2)

	style, _ := texts[0].Attr("style")
	assert.Equal(t, "font-size:20px;color:#333;opacity:0.5", style)

	unknown, ok := texts[1].Attr("data-unknown-style")
	assert.True(t, ok)
	assert.Equal(t, "missing", unknown)
}

func TestStyleBundleUnknownAttributeReported(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	tester.Listener().Strict = true
	require.NoError(t, tester.PumpYAML(`
styles:
  s:
    bogus: 1
layout:
  type: view
  style: s
  bogus: 1
`))
	assert.Equal(t, []string{"view.bogus", "view.bogus"}, tester.Listener().UnknownAttributes())
}

func TestViewAttributes(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: view
  id: header
  class: [card, raised]
  visibility: gone
  background: "#80FF0000"
  padding: 8dp 4
  width: match_parent
  onClick:
    action: open
    target: profile
`))
	root := tester.RootElement()
	require.NotNil(t, root)

	id, _ := root.Attr("id")
	assert.Equal(t, "header", id)
	viewID, _ := root.Attr("data-view-id")
	assert.Equal(t, "1", viewID)
	assert.Equal(t, 1, tester.Builder().UniqueViewID("header"))

	class, _ := root.Attr("class")
	assert.Equal(t, "sdui-view card raised", class)

	style, _ := root.Attr("style")
	assert.Equal(t, "display:none;background-color:rgba(255,0,0,0.502);padding:8px 4px;width:100%", style)

	action, _ := root.Attr("data-action")
	assert.JSONEq(t, `{"action":"open","target":"profile"}`, action)
	assert.Empty(t, tester.Errors())
}

func TestInvalidAttributeValueReported(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: text
  content: hi
  opacity: 2
  textStyle: wavy
`))
	assert.Equal(t, 2, tester.ErrorCount(errors.KindAttribute))
	assert.Zero(t, tester.Listener().Count(), "invalid values are not unknown attributes")
	_, ok := tester.RootElement().Style("opacity")
	assert.False(t, ok)
}

type fixedLoader struct {
	img image.Image
}

func (l fixedLoader) Load(context.Context, string) (image.Image, error) {
	return l.img, nil
}

func TestImageBitmapEmbedding(t *testing.T) {
	loader := fixedLoader{img: image.NewRGBA(image.Rect(0, 0, 40, 20))}
	tester := sduitest.NewLayoutTesterWithT(t, core.WithBitmapLoader(loader))
	require.NoError(t, tester.PumpYAML(`
layout:
  type: image
  src: logo.png
  alt: Logo
  width: 20
`))
	img := tester.RootElement()
	require.NotNil(t, img.Bitmap())

	var plain bytes.Buffer
	require.NoError(t, widgets.Render(&plain, img, widgets.RenderOptions{}))
	assert.Contains(t, plain.String(), `src="logo.png"`)

	var embedded bytes.Buffer
	require.NoError(t, widgets.Render(&embedded, img, widgets.RenderOptions{EmbedBitmaps: true}))
	out := embedded.String()
	assert.Contains(t, out, `src="data:image/png;base64,`)
	assert.Contains(t, out, `data-src="logo.png"`)
	assert.Contains(t, out, `alt="Logo"`)
}

func TestImageRejectsChildren(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: image
  src: logo.png
  children:
    - type: text
      content: caption
`))
	assert.Equal(t, `<img class="sdui-image" src="logo.png"/>`, tester.HTML())
	assert.Equal(t, 1, tester.ErrorCount(errors.KindBuild))
}

func TestMalformedLayoutFails(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	err := tester.PumpNode(&layout.Node{
		Type:     "container",
		Children: []*layout.Node{{Attributes: []layout.Attribute{{Name: "content", Value: "x"}}}},
	}, nil, nil)

	var layoutErr *errors.LayoutError
	require.ErrorAs(t, err, &layoutErr)
	assert.Equal(t, "container/?", layoutErr.Path)
	assert.Nil(t, tester.Root())
}

func TestDiscard(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: container
  children:
    - type: text
      content: keep
    - type: container
      children:
        - type: text
          content: drop
`))
	root := tester.RootElement()
	inner := root.Children()[1]
	leaf := inner.Children()[0]

	widgets.Discard(inner)

	assert.False(t, inner.Attached())
	assert.False(t, leaf.Attached())
	assert.True(t, root.Attached())
	assert.Len(t, root.Children(), 1)
	assert.NotContains(t, tester.HTML(), "drop")

	widgets.Discard(nil)
}

func TestDiscardListItem(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: list
  items: "${items}"
  children:
    - type: text
      content: "${.}"
data:
  items: [a, b]
`))
	list := tester.RootElement()
	require.Len(t, list.Children(), 2)

	widgets.Discard(list.Children()[0])

	assert.Len(t, list.Children(), 1)
	assert.Equal(t, `<div class="sdui-list"><ul><li><span class="sdui-text">b</span></li></ul></div>`, tester.HTML())
}

func TestRenderDocument(t *testing.T) {
	tester := sduitest.NewLayoutTesterWithT(t)
	require.NoError(t, tester.PumpYAML(`
layout:
  type: text
  content: Hello
`))

	var full bytes.Buffer
	require.NoError(t, widgets.Render(&full, tester.Root(), widgets.RenderOptions{Document: true, Title: "Card"}))
	out := full.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Card</title>")
	assert.Contains(t, out, `<body><span class="sdui-text">Hello</span></body>`)

	// The tree is intact after rendering a page around it.
	assert.Nil(t, tester.RootElement().Node.Parent)

	var small bytes.Buffer
	require.NoError(t, widgets.Render(&small, tester.Root(), widgets.RenderOptions{Document: true, Minify: true}))
	assert.Contains(t, small.String(), "Hello")
	assert.Less(t, small.Len(), full.Len())
}

func TestRenderNil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, widgets.Render(&buf, nil, widgets.RenderOptions{}))
	assert.Zero(t, buf.Len())
}

func TestHandlersAttributes(t *testing.T) {
	handlers := widgets.Handlers()
	assert.ElementsMatch(t, []string{"view", "container", "text", "button", "image", "list"}, keys(handlers))

	text := handlers["text"].(*widgets.ViewHandler)
	assert.Contains(t, text.Attributes(), "content")
	assert.Contains(t, text.Attributes(), "style")
	assert.Contains(t, text.Attributes(), "padding")

	list := handlers["list"].(*widgets.ListHandler)
	assert.Contains(t, list.Attributes(), "items")
}

func keys(m map[string]core.Handler) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

package testing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-drift/sdui/pkg/core"
	"github.com/go-drift/sdui/pkg/errors"
	"github.com/go-drift/sdui/pkg/layout"
	"github.com/go-drift/sdui/pkg/widgets"
)

// LayoutTester builds layouts with the HTML toolkit and records everything
// the build reported: errors, panics, unknown types and unknown attributes.
type LayoutTester struct {
	builder   *core.LayoutBuilder
	listener  *widgets.PlaceholderListener
	collector *errors.Collector
	prev      errors.ErrorHandler
	root      core.Element
	err       error
}

// NewLayoutTester creates a tester with the default toolkit and a
// synchronous builder. It installs a collecting error handler; call Cleanup
// when done, or use NewLayoutTesterWithT instead.
func NewLayoutTester(opts ...core.Option) *LayoutTester {
	t := &LayoutTester{
		listener:  &widgets.PlaceholderListener{},
		collector: &errors.Collector{},
		prev:      errors.DefaultHandler,
	}
	opts = append([]core.Option{
		core.WithSynchronousRendering(true),
		core.WithListener(t.listener),
	}, opts...)
	t.builder = widgets.NewBuilder(nil, opts...)
	errors.SetHandler(t.collector)
	return t
}

// NewLayoutTesterWithT creates a tester cleaned up when the test ends.
func NewLayoutTesterWithT(tb testing.TB, opts ...core.Option) *LayoutTester {
	t := NewLayoutTester(opts...)
	tb.Cleanup(t.Cleanup)
	return t
}

// Cleanup restores the previous error handler.
func (t *LayoutTester) Cleanup() {
	errors.SetHandler(t.prev)
}

// Builder returns the tester's builder for further configuration.
func (t *LayoutTester) Builder() *core.LayoutBuilder {
	return t.builder
}

// Listener returns the placeholder listener recording unknown content.
func (t *LayoutTester) Listener() *widgets.PlaceholderListener {
	return t.listener
}

// Pump builds doc's layout with its data and styles and waits for bitmaps.
func (t *LayoutTester) Pump(doc *layout.Document) error {
	return t.PumpNode(doc.Layout, doc.Data, doc.Styles)
}

// PumpNode builds node with data and styles and waits for bitmaps.
func (t *LayoutTester) PumpNode(node *layout.Node, data any, styles layout.Styles) error {
	t.root, t.err = t.builder.Build(nil, node, data, 0, styles)
	t.builder.WaitBitmaps()
	return t.err
}

// PumpYAML decodes a YAML or JSON layout document and builds it.
func (t *LayoutTester) PumpYAML(src string) error {
	doc, err := layout.Decode(strings.NewReader(src))
	if err != nil {
		return err
	}
	return t.Pump(doc)
}

// Root returns the last built root, which may be nil.
func (t *LayoutTester) Root() core.Element {
	return t.root
}

// RootElement returns the last built root as a toolkit element, or nil.
func (t *LayoutTester) RootElement() *widgets.Element {
	e, _ := t.root.(*widgets.Element)
	return e
}

// Find evaluates finder against the last built tree.
func (t *LayoutTester) Find(finder Finder) FinderResult {
	root := t.RootElement()
	if root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{elements: finder.Evaluate(root), finder: finder}
}

// HTML renders the last built tree as an HTML fragment.
func (t *LayoutTester) HTML() string {
	var buf bytes.Buffer
	if err := widgets.Render(&buf, t.root, widgets.RenderOptions{}); err != nil {
		return "<render error: " + err.Error() + ">"
	}
	return buf.String()
}

// Errors returns the errors reported since the tester was created.
func (t *LayoutTester) Errors() []*errors.SduiError {
	return t.collector.Errors()
}

// ErrorCount returns how many errors of kind were reported.
func (t *LayoutTester) ErrorCount(kind errors.ErrorKind) int {
	return t.collector.Count(kind)
}

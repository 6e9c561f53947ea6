package widgets

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	mhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/sdui/pkg/bitmap"
	"github.com/go-drift/sdui/pkg/core"
	"github.com/go-drift/sdui/pkg/errors"
)

// RenderOptions controls HTML output.
type RenderOptions struct {
	// Document wraps the tree in a complete HTML page.
	Document bool
	// Title is the page title when Document is set.
	Title string
	// EmbedBitmaps replaces image sources with loaded bitmaps as PNG data
	// URIs, scaled down to the image's width and height.
	EmbedBitmaps bool
	// Minify minifies the output, including inline styles.
	Minify bool
}

const baseCSS = `.sdui-list>ul{list-style:none;margin:0;padding:0}.sdui-unknown{outline:1px dashed #c00;min-height:1em}`

// Render writes el as HTML. A nil element writes nothing, or an empty page
// when Document is set.
func Render(w io.Writer, el core.Element, opts RenderOptions) error {
	var root *Element
	if el != nil {
		e, ok := el.(*Element)
		if !ok {
			return fmt.Errorf("render: unsupported element %T", el)
		}
		root = e
	}

	if opts.Document && root != nil && root.Node.Parent != nil {
		return fmt.Errorf("render: a document needs a root element")
	}
	if root != nil && opts.EmbedBitmaps {
		embedBitmaps(root)
	}

	var buf bytes.Buffer
	if opts.Document {
		err := html.Render(&buf, page(root, opts.Title))
		if root != nil {
			root.Node.Parent.RemoveChild(root.Node)
		}
		if err != nil {
			return fmt.Errorf("render: %w", err)
		}
	} else if root != nil {
		if err := html.Render(&buf, root.Node); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	if !opts.Minify {
		_, err := buf.WriteTo(w)
		return err
	}
	return newMinifier().Minify("text/html", w, &buf)
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &mhtml.Minifier{KeepDocumentTags: true, KeepEndTags: true, KeepQuotes: true})
	return m
}

// embedBitmaps writes loaded bitmaps into their image elements.
func embedBitmaps(root *Element) {
	root.Walk(func(e *Element) bool {
		img := e.Bitmap()
		if img == nil || !e.Attached() {
			return true
		}
		uri, err := bitmap.EncodeDataURI(bitmap.ScaleToFit(img, e.fitWidth, e.fitHeight))
		if err != nil {
			errors.ReportErr("widgets.Render", errors.KindBitmap, e.nodeType(), err)
			return true
		}
		if _, embedded := e.Attr("data-src"); !embedded {
			src, _ := e.Attr("src")
			e.SetAttr("data-src", src)
		}
		e.SetAttr("src", uri)
		return true
	})
}

// page builds a document around a detached root. The root node is moved
// into the body and must be detached again after rendering.
func page(root *Element, title string) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlNode := elem(atom.Html)
	doc.AppendChild(htmlNode)

	head := elem(atom.Head)
	htmlNode.AppendChild(head)
	meta := elem(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	if title != "" {
		t := elem(atom.Title)
		t.AppendChild(&html.Node{Type: html.TextNode, Data: title})
		head.AppendChild(t)
	}
	style := elem(atom.Style)
	style.AppendChild(&html.Node{Type: html.TextNode, Data: baseCSS})
	head.AppendChild(style)

	body := elem(atom.Body)
	htmlNode.AppendChild(body)
	if root != nil {
		body.AppendChild(root.Node)
	}
	return doc
}

func elem(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

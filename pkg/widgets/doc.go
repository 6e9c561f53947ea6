// Package widgets is an HTML toolkit for the layout builder.
//
// Every handler creates an [Element] wrapping an x/net/html node, so a built
// tree can be rendered with [Render]:
//
//	b := widgets.NewBuilder(nil)
//	b.SetListener(&widgets.PlaceholderListener{})
//	root, err := b.Build(nil, doc.Layout, doc.Data, 0, doc.Styles)
//	if err != nil {
//	    return err
//	}
//	return widgets.Render(os.Stdout, root, widgets.RenderOptions{Document: true})
//
// # Node types
//
//	view       <div>, the attributes below
//	container  flex <div>: orientation, spacing, gravity
//	text       <span>: content (or text), textColor, textSize, textStyle, maxLines
//	button     <button>: as text
//	image      <img>: src, alt, width, height
//	list       <div><ul>: items; child nodes are templates built per item
//
// All types accept id, class, style, visibility, background, padding,
// margin, width, height, opacity, onClick and title. String values may
// contain "${path}" bindings resolved against the node's data.
//
// The style attribute names one or more bundles from the document's styles,
// applied in order through the node's own handler.
package widgets

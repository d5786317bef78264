// Package sink draws a positioned sequence graph as standalone SVG.
//
// Nothing is laid out here: every coordinate comes from the graph. Lifelines
// are drawn first, then edges, then actor and message boxes on top so labels
// stay readable where lines cross.
package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/render"
)

const (
	actorFontSize   = 14.0
	messageFontSize = 12.0
	titleFontSize   = 16.0
	titleBand       = 30.0
	emptyWidth      = 400.0
	emptyHeight     = 120.0
)

const markerDefs = `  <defs>
    <marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="6" markerHeight="6" orient="auto-start-reverse">
      <path d="M 0 0 L 10 5 L 0 10 z" fill="context-stroke"/>
    </marker>
  </defs>
`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title      string
	background string
	message    string
	padding    float64
}

// WithTitle draws a caption above the diagram.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithBackground fills the canvas with a solid color. Default is transparent.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithMessage writes a centered notice, used to explain why a graph is empty.
func WithMessage(msg string) SVGOption { return func(r *svgRenderer) { r.message = msg } }

// WithPadding sets the margin right of and below the outermost node.
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// RenderSVG draws g. The output is deterministic for a given graph and
// options.
func RenderSVG(g graph.Graph, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	width, height := g.Bounds(r.padding)
	if width == 0 {
		width, height = emptyWidth, emptyHeight
	}
	contentHeight := height
	offsetY := 0.0
	if r.title != "" {
		offsetY = titleBand
		height += titleBand
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	buf.WriteString(markerDefs)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", render.EscapeXML(r.background))
	}
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="%.0f" font-weight="bold">%s</text>`+"\n",
			width/2, titleBand*0.7, titleFontSize, render.EscapeXML(r.title))
	}
	if r.message != "" {
		fmt.Fprintf(&buf, `  <text class="notice" x="%.1f" y="%.1f" text-anchor="middle" font-family="sans-serif" font-size="%.0f" fill="#b71c1c">%s</text>`+"\n",
			width/2, offsetY+contentHeight/2, messageFontSize, render.EscapeXML(r.message))
	}

	fmt.Fprintf(&buf, `  <g transform="translate(0 %.1f)">`+"\n", offsetY)
	renderContent(&buf, g)
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{padding: graph.DefaultPadding}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderContent(buf *bytes.Buffer, g graph.Graph) {
	for _, n := range g.NodesOfType(graph.NodeTypeLifeline) {
		renderLifeline(buf, n)
	}
	for _, e := range g.Edges {
		renderEdge(buf, g, e)
	}
	for _, n := range g.Nodes {
		switch n.Type {
		case graph.NodeTypeActor:
			renderActor(buf, n)
		case graph.NodeTypeMessage:
			renderMessage(buf, n)
		}
	}
}

func renderLifeline(buf *bytes.Buffer, n graph.Node) {
	w, h := n.Size()
	fmt.Fprintf(buf, `    <rect id="%s" class="lifeline" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		render.EscapeXML(n.ID), n.Position.X, n.Position.Y, w, h, render.LifelineColor)
	fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="10" fill="%s"/>`+"\n",
		n.Position.X+w/2, n.Position.Y, render.LifelineColor)
}

func renderEdge(buf *bytes.Buffer, g graph.Graph, e graph.Edge) {
	from, to, ok := g.EdgePoints(e)
	if !ok {
		return
	}
	s := render.StyleFor(e.Kind)
	dash := ""
	if s.Dashed() {
		dash = fmt.Sprintf(` stroke-dasharray="%s"`, s.DashArray)
	}
	fmt.Fprintf(buf, `    <line id="%s" class="edge %s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.0f"%s marker-end="url(#arrow)"/>`+"\n",
		render.EscapeXML(e.ID), render.EscapeXML(e.Kind), from.X, from.Y, to.X, to.Y, s.Stroke, render.StrokeWidth, dash)
}

func renderActor(buf *bytes.Buffer, n graph.Node) {
	w, h := n.Size()
	c := n.Center()
	fmt.Fprintf(buf, `    <rect id="%s" class="actor" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="%s" stroke="%s" stroke-width="%.0f"/>`+"\n",
		render.EscapeXML(n.ID), n.Position.X, n.Position.Y, w, h, render.ActorFill, render.ActorStroke, render.StrokeWidth)
	renderText(buf, c, actorFontSize, render.ActorStroke, "bold", render.Truncate(n.Data.Label, w, actorFontSize))
}

func renderMessage(buf *bytes.Buffer, n graph.Node) {
	w, h := n.Size()
	c := n.Center()
	s := render.StyleFor(n.Data.MessageType)
	fmt.Fprintf(buf, `    <rect id="%s" class="message %s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="4" fill="%s" stroke="%s" stroke-width="%.0f"/>`+"\n",
		render.EscapeXML(n.ID), render.EscapeXML(n.Data.MessageType), n.Position.X, n.Position.Y, w, h, s.Fill, s.Stroke, render.StrokeWidth)
	renderText(buf, c, messageFontSize, s.Stroke, "500", render.Truncate(n.Data.Label, w-20, messageFontSize))
}

func renderText(buf *bytes.Buffer, c graph.Position, size float64, color, weight, text string) {
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="%.0f" font-weight="%s" fill="%s">%s</text>`+"\n",
		c.X, c.Y, size, weight, color, render.EscapeXML(text))
}

package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/render"
)

// pointsPerInch converts graph pixels to Graphviz inches.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Detailed prefixes message labels with their kind.
	// When false, only the message text is shown.
	Detailed bool
}

// ToDOT converts a positioned graph to Graphviz DOT.
//
// Every node is pinned at its projected center (pos="x,y!"), so Graphviz only
// draws and never moves anything. The y axis is inverted because Graphviz
// grows upwards. Edges leave through the east port and enter through the west
// port, matching the right/left handles of the graph.
func ToDOT(g graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  node [fixedsize=true, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [penwidth=2, arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		s := render.StyleFor(e.Kind)
		attrs := []string{
			fmt.Sprintf("id=%q", e.ID),
			fmt.Sprintf("color=%q", s.Stroke),
			fmt.Sprintf("tailport=%q", port(e.SourceHandle)),
			fmt.Sprintf("headport=%q", port(e.TargetHandle)),
		}
		if s.Dashed() {
			attrs = append(attrs, `style="dashed"`)
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	switch n.Type {
	case graph.NodeTypeLifeline:
		return ""
	case graph.NodeTypeMessage:
		if detailed && n.Data.MessageType != "" {
			return "[" + n.Data.MessageType + "] " + n.Data.Label
		}
	}
	return n.Data.Label
}

func fmtAttrs(n graph.Node, opts Options) []string {
	w, h := n.Size()
	c := n.Center()
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
		fmt.Sprintf("pos=\"%s,%s!\"", inches(c.X), inches(-c.Y)),
		fmt.Sprintf("width=%s", inches(w)),
		fmt.Sprintf("height=%s", inches(h)),
	}

	switch n.Type {
	case graph.NodeTypeActor:
		attrs = append(attrs, "shape=box", `style="rounded,filled"`,
			fmt.Sprintf("fillcolor=%q", render.ActorFill),
			fmt.Sprintf("color=%q", render.ActorStroke),
			fmt.Sprintf("fontcolor=%q", render.ActorStroke))
	case graph.NodeTypeLifeline:
		attrs = append(attrs, "shape=box", `style="filled"`,
			fmt.Sprintf("fillcolor=%q", render.LifelineColor),
			fmt.Sprintf("color=%q", render.LifelineColor))
	case graph.NodeTypeMessage:
		s := render.StyleFor(n.Data.MessageType)
		attrs = append(attrs, "shape=box", `style="rounded,filled"`,
			fmt.Sprintf("fillcolor=%q", s.Fill),
			fmt.Sprintf("color=%q", s.Stroke),
			fmt.Sprintf("fontcolor=%q", s.Stroke))
	}
	return attrs
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

func port(handle string) string {
	if handle == graph.HandleLeft {
		return "w"
	}
	return "e"
}

// RenderSVG renders a DOT graph to SVG using the Graphviz neato engine, which
// honors pinned positions.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one whose
// viewBox starts at the origin and whose width/height are unitless pixels.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

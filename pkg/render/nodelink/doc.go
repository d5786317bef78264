// Package nodelink renders positioned sequence graphs through Graphviz.
//
// # Overview
//
// The layout projector has already fixed every coordinate, so this package
// does not ask Graphviz to lay anything out. [ToDOT] pins each node with
// pos="x,y!" and [RenderSVG] draws the result with the neato engine, which
// keeps pinned nodes where they are.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # DOT Format
//
// The DOT source is useful on its own: it can be saved and processed with
// the graphviz command line tools (neato -n2 keeps the pinned positions) or
// edited before rendering. Edge color and dash style follow
// [render.StyleFor].
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink

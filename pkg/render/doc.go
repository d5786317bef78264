// Package render provides the visual vocabulary and format conversion shared
// by seqflow's renderers.
//
// # Overview
//
// Rendering turns a positioned [graph.Graph] into an image. Positions are
// already fixed by the layout projector, so renderers only draw:
//
//   - Native SVG drawing (in [sink] subpackage)
//   - Graphviz DOT output and Graphviz-drawn SVG (in [nodelink] subpackage)
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Styles
//
// [StyleFor] maps a message kind to its stroke color, fill color and dash
// pattern. Both renderers use it so a request looks the same in every output.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(g)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [graph.Graph]: github.com/matzehuels/seqflow/pkg/graph.Graph
// [sink]: github.com/matzehuels/seqflow/pkg/render/sink
// [nodelink]: github.com/matzehuels/seqflow/pkg/render/nodelink
package render

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	apperrors "github.com/matzehuels/seqflow/pkg/errors"
	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/observability"
	"github.com/matzehuels/seqflow/pkg/render"
	"github.com/matzehuels/seqflow/pkg/render/nodelink"
	"github.com/matzehuels/seqflow/pkg/render/sink"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// Render generates output artifacts in the requested formats.
//
// JSON and DOT do not depend on the engine. SVG, PNG and PDF are drawn by
// the engine selected in opts; PNG and PDF additionally need rsvg-convert.
func Render(ctx context.Context, g graph.Graph, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(ctx, g, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormats(ctx context.Context, g graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	// The DOT source is shared by the dot format and the graphviz engine.
	var dot string
	if opts.IsGraphviz() || slices.Contains(opts.Formats, FormatDOT) {
		dot = nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed})
	}

	// Native SVG is the input for native PNG and PDF.
	var svg []byte
	nativeSVG := func() []byte {
		if svg == nil {
			svg = sink.RenderSVG(g, svgOptions(opts)...)
		}
		return svg
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = graph.MarshalGraph(g)
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			if opts.IsGraphviz() {
				data, err = nodelink.RenderSVG(ctx, dot)
			} else {
				data = nativeSVG()
			}
		case FormatPNG:
			if opts.IsGraphviz() {
				data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
			} else {
				data, err = render.ToPNG(ctx, nativeSVG(), opts.Scale)
			}
		case FormatPDF:
			if opts.IsGraphviz() {
				data, err = nodelink.RenderPDF(ctx, dot)
			} else {
				data, err = render.ToPDF(ctx, nativeSVG())
			}
		default:
			return nil, apperrors.New(apperrors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// svgOptions builds native SVG rendering options.
func svgOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}
	return svgOpts
}

// RenderError draws the empty graph together with a visible notice, which is
// what consumers show when a document cannot be parsed. Only the native SVG
// and JSON formats are produced; other requested formats are ignored.
func RenderError(err error, opts Options) map[string][]byte {
	msg := apperrors.UserMessage(err)
	var fe *sequence.FormatError
	if errors.As(err, &fe) {
		msg += ": " + fe.Error()
	}
	out := make(map[string][]byte, 2)
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			out[format] = sink.RenderSVG(graph.Empty(), append(svgOptions(opts), sink.WithMessage(msg))...)
		case FormatJSON:
			data, _ := graph.MarshalGraph(graph.Empty())
			out[format] = data
		}
	}
	return out
}

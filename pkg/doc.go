// Package pkg provides the core libraries for seqflow.
//
// # Overview
//
// Seqflow reads the sequenceDiagram subset of Mermaid and turns it into a
// positioned node/edge graph that canvas-style front ends can draw directly.
// The pkg directory is organized into four areas:
//
//  1. Domain: [sequence] (parsing), [layout] (projection), [graph] (output types)
//  2. Rendering: [render], [render/sink] (native SVG), [render/nodelink] (DOT/Graphviz)
//  3. Infrastructure: [cache], [storage], [observability], [errors], [buildinfo]
//  4. Orchestration: [pipeline] (parse → project → render, with caching)
//
// # Architecture
//
// The typical data flow:
//
//	diagram text
//	     ↓
//	[sequence] package (actors + classified messages)
//	     ↓
//	[layout] package (grid projection, never fails)
//	     ↓
//	[graph] package (nodes with positions, edges with handles)
//	     ↓
//	SVG/PNG/PDF/DOT/JSON output
//
// # Quick Start
//
//	d, err := sequence.Parse(text)
//	if err != nil {
//	    // only a missing "sequenceDiagram" header fails
//	    return err
//	}
//	g := layout.Project(d)
//	svg := sink.RenderSVG(g, sink.WithTitle("Login"))
//
// Most callers use [pipeline.Runner], which adds validation, caching and
// observability hooks around the same steps.
//
// [sequence]: github.com/matzehuels/seqflow/pkg/sequence
// [layout]: github.com/matzehuels/seqflow/pkg/layout
// [graph]: github.com/matzehuels/seqflow/pkg/graph
// [render]: github.com/matzehuels/seqflow/pkg/render
// [render/sink]: github.com/matzehuels/seqflow/pkg/render/sink
// [render/nodelink]: github.com/matzehuels/seqflow/pkg/render/nodelink
// [cache]: github.com/matzehuels/seqflow/pkg/cache
// [storage]: github.com/matzehuels/seqflow/pkg/storage
// [observability]: github.com/matzehuels/seqflow/pkg/observability
// [errors]: github.com/matzehuels/seqflow/pkg/errors
// [buildinfo]: github.com/matzehuels/seqflow/pkg/buildinfo
// [pipeline]: github.com/matzehuels/seqflow/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/seqflow/pkg/pipeline#Runner
package pkg

package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/seqflow/pkg/cache"
	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/layout"
	"github.com/matzehuels/seqflow/pkg/observability"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// Project positions d on the grid from opts.Layout. A zero Layout means the
// default grid; zero spacing fields fall back to their defaults. Projection
// never fails.
func Project(ctx context.Context, d *sequence.Diagram, opts Options) graph.Graph {
	messages := 0
	if d != nil {
		messages = len(d.Messages)
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, messages)
	start := time.Now()

	g := layout.ProjectWith(d, gridConfig(opts.Layout))

	hooks.OnLayoutComplete(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start))
	return g
}

// GraphHash returns the content hash of g, as used in artifact cache keys
// and API responses.
func GraphHash(g graph.Graph) (string, error) {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

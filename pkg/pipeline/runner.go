package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seqflow/pkg/cache"
	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/observability"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the watch loop and the API all use it so caching behaves the same
// everywhere.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → project → render pipeline.
//
// A missing header stays detectable with [sequence.IsFormatError] through the
// stage prefix, so callers can show [RenderError] output instead.
func (r *Runner) Execute(ctx context.Context, source string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	d, err := r.Parse(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Diagram = d
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.ActorCount = len(d.Actors)
	result.Stats.MessageCount = len(d.Messages)

	r.Logger.Info("parsed diagram",
		"actors", len(d.Actors),
		"messages", len(d.Messages),
		"duration", result.Stats.ParseTime)

	// Stage 2: Project
	layoutStart := time.Now()
	g := r.Project(ctx, d, opts)
	result.Graph = g
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	r.Logger.Info("projected graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	rendered, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.GraphHash = rendered.GraphHash
	result.Artifacts = rendered.Artifacts
	result.CacheInfo.RenderHit = rendered.Hit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", rendered.Hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse parses source into a diagram. Parsing is never cached.
func (r *Runner) Parse(ctx context.Context, source string) (*sequence.Diagram, error) {
	return Parse(ctx, source)
}

// Project positions d on the grid from opts.Layout. Projection is never
// cached.
func (r *Runner) Project(ctx context.Context, d *sequence.Diagram, opts Options) graph.Graph {
	return Project(ctx, d, opts)
}

// Rendered is the output of [Runner.RenderWithCacheInfo].
type Rendered struct {
	GraphHash string
	Artifacts map[string][]byte
	Hit       bool // every artifact came from cache
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
//
// Artifacts are looked up per format; if any format misses, all requested
// formats are rendered and stored. Cache failures are logged and never fail
// the render.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (Rendered, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Rendered{}, err
	}

	graphHash, err := GraphHash(g)
	if err != nil {
		return Rendered{}, fmt.Errorf("hash graph: %w", err)
	}
	out := Rendered{GraphHash: graphHash}
	hooks := observability.Cache()

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				r.Logger.Warn("cache read failed", "format", format, "error", err)
			}
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, "artifact")
				break
			}
			hooks.OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			out.Artifacts = artifacts
			out.Hit = true
			return out, nil
		}
	}

	rendered, err := Render(ctx, g, opts)
	if err != nil {
		return Rendered{}, err
	}

	// Cache each format
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		hooks.OnCacheSet(ctx, "artifact", len(data))
	}

	out.Artifacts = rendered
	return out, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and returns
// the artifacts together with the cache hit flag.
func (r *Runner) Render(ctx context.Context, g graph.Graph, opts Options) (map[string][]byte, bool, error) {
	rendered, err := r.RenderWithCacheInfo(ctx, g, opts)
	return rendered.Artifacts, rendered.Hit, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Package pipeline provides the parse → project → render pipeline for seqflow.
//
// This package implements the complete pipeline that is used by the CLI, the
// watch loop and the HTTP API. By centralizing this logic, every entry point
// produces identical graphs and artifacts for identical input.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Turn diagram text into a [sequence.Diagram]
//  2. Project: Place actors, lifelines and messages on a grid ([graph.Graph])
//  3. Render: Generate output in various formats (SVG, DOT, JSON, PNG, PDF)
//
// Parse and Project are pure and always recomputed. Only Render results are
// cached, keyed by the graph hash and the render options.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	    Engine:  "native",
//	}
//	result, err := runner.Execute(ctx, source, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	d, err := runner.Parse(ctx, source)
//	g := runner.Project(ctx, d, opts)
//	artifacts, hit, err := runner.Render(ctx, g, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/seqflow/pkg/cache"
	apperrors "github.com/matzehuels/seqflow/pkg/errors"
	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/layout"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Watch
// =============================================================================

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Engine constants. The native engine draws SVG directly from graph
// coordinates; the graphviz engine pins the same coordinates in DOT and lets
// Graphviz draw.
const (
	EngineNative   = "native"
	EngineGraphviz = "graphviz"
)

const (
	// DefaultEngine is used when Options.Engine is empty.
	DefaultEngine = EngineNative

	// DefaultScale is the PNG rasterization factor.
	DefaultScale = 2.0
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ValidEngines is the set of supported render engines.
var ValidEngines = map[string]bool{
	EngineNative:   true,
	EngineGraphviz: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Layout layout.Config `json:"layout"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Engine     string   `json:"engine,omitempty"`
	Title      string   `json:"title,omitempty"`
	Background string   `json:"background,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"` // Prefix DOT labels with the message kind
	Scale      float64  `json:"scale,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"` // Bypass the artifact cache

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Diagram is the parsed intermediate model.
	Diagram *sequence.Diagram

	// Graph is the positioned node/edge graph.
	Graph graph.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ActorCount   int
	MessageCount int
	NodeCount    int
	EdgeCount    int
	ParseTime    time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return apperrors.New(apperrors.ErrCodeInvalidOutput,
			"invalid format: %q (must be one of: %s)", format, strings.Join(sortedKeys(ValidFormats), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that an engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return apperrors.New(apperrors.ErrCodeInvalidEngine,
			"invalid engine: %q (must be one of: native, graphviz)", engine)
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates the render settings.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if o.Scale < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	o.validated = true
	return nil
}

// SetDefaults fills empty fields with their defaults.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Formats = dedupe(o.Formats)
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.Layout = gridConfig(o.Layout)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// gridConfig returns the default grid for a zero config and fills missing
// spacings otherwise.
func gridConfig(c layout.Config) layout.Config {
	if c == (layout.Config{}) {
		return layout.DefaultConfig()
	}
	return c.WithDefaults()
}

// dedupe drops repeated formats, keeping first occurrences.
func dedupe(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// IsGraphviz returns true if rendering goes through Graphviz.
func (o *Options) IsGraphviz() bool {
	return o.Engine == EngineGraphviz
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Fields that cannot affect the given format are left zero so that, for
// example, the JSON artifact is shared between engines.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatJSON:
		return k
	case FormatDOT:
		k.Detailed = o.Detailed
		return k
	}
	k.Engine = o.Engine
	k.Title = o.Title
	k.Background = o.Background
	if o.IsGraphviz() {
		k.Detailed = o.Detailed
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/seqflow/pkg/cache"
	apperrors "github.com/matzehuels/seqflow/pkg/errors"
	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/layout"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

const loginFlow = `sequenceDiagram
participant Client
participant Server
Client->>Server: login
Server-->>Client: token
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !apperrors.Is(err, apperrors.ErrCodeInvalidOutput) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_OUTPUT", tt.format, apperrors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateEngine(t *testing.T) {
	tests := []struct {
		engine  string
		wantErr bool
	}{
		{"native", false},
		{"graphviz", false},
		{"dot", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateEngine(tt.engine)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEngine(%q) error = %v, wantErr %v", tt.engine, err, tt.wantErr)
		}
		if err != nil && !apperrors.Is(err, apperrors.ErrCodeInvalidEngine) {
			t.Errorf("ValidateEngine(%q) code = %s, want INVALID_ENGINE", tt.engine, apperrors.GetCode(err))
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Empty options should pass: %v", err)
	}

	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats should be [svg], got %v", opts.Formats)
	}
	if opts.Engine != DefaultEngine {
		t.Errorf("Engine should be %s, got %s", DefaultEngine, opts.Engine)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale should be %v, got %v", DefaultScale, opts.Scale)
	}
	if opts.Layout != layout.DefaultConfig() {
		t.Errorf("Layout defaults not applied: %+v", opts.Layout)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsDedupeFormats(t *testing.T) {
	opts := Options{Formats: []string{"svg", " SVG", "json", "svg"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(opts.Formats, ","); got != "svg,json" {
		t.Errorf("Formats = %s, want svg,json", got)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Formats: []string{"json"}, Engine: "graphviz"}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	originalFormats := strings.Join(opts.Formats, ",")
	originalEngine := opts.Engine

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if strings.Join(opts.Formats, ",") != originalFormats {
		t.Error("Formats changed on second call")
	}
	if opts.Engine != originalEngine {
		t.Error("Engine changed on second call")
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code apperrors.Code
	}{
		{"BadFormat", Options{Formats: []string{"gif"}}, apperrors.ErrCodeInvalidOutput},
		{"BadEngine", Options{Engine: "mermaid"}, apperrors.ErrCodeInvalidEngine},
		{"NegativeScale", Options{Scale: -1}, apperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !apperrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	native := Options{Engine: EngineNative, Title: "t", Scale: 2}
	gv := Options{Engine: EngineGraphviz, Title: "t", Scale: 2}

	if native.ArtifactKeyOpts(FormatJSON) != gv.ArtifactKeyOpts(FormatJSON) {
		t.Error("JSON key should not depend on engine")
	}
	if native.ArtifactKeyOpts(FormatDOT) != gv.ArtifactKeyOpts(FormatDOT) {
		t.Error("DOT key should not depend on engine")
	}
	if native.ArtifactKeyOpts(FormatSVG) == gv.ArtifactKeyOpts(FormatSVG) {
		t.Error("SVG key should depend on engine")
	}
	if native.ArtifactKeyOpts(FormatSVG).Scale != 0 {
		t.Error("SVG key should not carry scale")
	}
	if native.ArtifactKeyOpts(FormatPNG).Scale != 2 {
		t.Error("PNG key should carry scale")
	}
}

func TestParse(t *testing.T) {
	ctx := context.Background()

	d, err := Parse(ctx, loginFlow)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(d.Actors) != 2 || len(d.Messages) != 2 {
		t.Errorf("got %d actors, %d messages", len(d.Actors), len(d.Messages))
	}

	_, err = Parse(ctx, "graph TD\nA-->B")
	if !sequence.IsFormatError(err) {
		t.Errorf("missing header: IsFormatError = false, err = %v", err)
	}

	_, err = Parse(ctx, "sequenceDiagram\n\x00")
	if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("null byte: err = %v, want INVALID_INPUT", err)
	}
}

func TestProjectUsesLayoutConfig(t *testing.T) {
	d, err := sequence.Parse(loginFlow)
	if err != nil {
		t.Fatal(err)
	}
	cfg := layout.DefaultConfig()
	cfg.ColumnWidth = 300

	g := Project(context.Background(), d, Options{Layout: cfg})
	server, ok := g.Node("Server")
	if !ok {
		t.Fatal("Server node missing")
	}
	if server.Position.X != cfg.ActorX+300 {
		t.Errorf("Server x = %v, want %v", server.Position.X, cfg.ActorX+300)
	}

	// A zero config is the default grid.
	def := layout.DefaultConfig()
	g = Project(context.Background(), d, Options{})
	if n, _ := g.Node("msg-1"); n.Position.Y != def.MessageY+def.RowHeight {
		t.Errorf("msg-1 y = %v, want %v", n.Position.Y, def.MessageY+def.RowHeight)
	}

	// A partial config keeps its origins and gains default spacing.
	g = Project(context.Background(), d, Options{Layout: layout.Config{ActorX: 10}})
	if n, _ := g.Node("Server"); n.Position.X != 10+def.ColumnWidth {
		t.Errorf("Server x = %v, want %v", n.Position.X, 10+def.ColumnWidth)
	}
}

func TestRenderFormats(t *testing.T) {
	d, err := sequence.Parse(loginFlow)
	if err != nil {
		t.Fatal(err)
	}
	g := layout.Project(d)

	artifacts, err := Render(context.Background(), g, Options{Formats: []string{"svg", "dot", "json"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(artifacts) != 3 {
		t.Fatalf("got %d artifacts, want 3", len(artifacts))
	}
	if !bytes.HasPrefix(artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact is not SVG")
	}
	if !strings.HasPrefix(string(artifacts["dot"]), "digraph") {
		t.Errorf("dot artifact = %.40q", artifacts["dot"])
	}

	parsed, err := graph.UnmarshalGraph(artifacts["json"])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if parsed.NodeCount() != g.NodeCount() || parsed.EdgeCount() != g.EdgeCount() {
		t.Errorf("json round trip: %d/%d, want %d/%d",
			parsed.NodeCount(), parsed.EdgeCount(), g.NodeCount(), g.EdgeCount())
	}
}

func TestRenderError(t *testing.T) {
	_, err := sequence.Parse("flowchart LR")
	if err == nil {
		t.Fatal("expected format error")
	}

	out := RenderError(err, Options{Formats: []string{"svg", "json", "png"}})
	if _, ok := out["png"]; ok {
		t.Error("RenderError should skip png")
	}
	if !bytes.Contains(out["svg"], []byte("flowchart LR")) {
		t.Errorf("svg notice should quote the offending line:\n%s", out["svg"])
	}
	g, err := graph.UnmarshalGraph(out["json"])
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("json should be the empty graph, got %d nodes", g.NodeCount())
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	result, err := r.Execute(context.Background(), loginFlow, Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.ActorCount != 2 || result.Stats.MessageCount != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	// 2 actors × (actor + lifeline) + 2 messages; 2 edges per message.
	if result.Stats.NodeCount != 6 || result.Stats.EdgeCount != 4 {
		t.Errorf("nodes/edges = %d/%d, want 6/4", result.Stats.NodeCount, result.Stats.EdgeCount)
	}
	if len(result.GraphHash) != 64 {
		t.Errorf("GraphHash = %q", result.GraphHash)
	}
	if result.CacheInfo.RenderHit {
		t.Error("null cache should never hit")
	}
	if _, ok := result.Artifacts["json"]; !ok {
		t.Error("json artifact missing")
	}
}

func TestRunnerExecuteFormatError(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), "", Options{})
	if !sequence.IsFormatError(err) {
		t.Errorf("IsFormatError = false for %v", err)
	}
	if !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
		t.Errorf("code = %s, want INVALID_FORMAT", apperrors.GetCode(err))
	}
}

func TestRunnerRenderCacheHit(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := Options{Formats: []string{"svg", "json"}}
	first, err := r.Execute(ctx, loginFlow, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first render should miss")
	}

	second, err := r.Execute(ctx, loginFlow, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second identical render should hit")
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs from rendered svg")
	}

	// A different title is a different artifact.
	opts.Title = "Login"
	third, err := r.Execute(ctx, loginFlow, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("changed title should miss")
	}

	// Refresh bypasses the cache.
	opts.Refresh = true
	fourth, err := r.Execute(ctx, loginFlow, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/pipeline"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

func TestWatchFormat(t *testing.T) {
	tests := []struct {
		format, output, want string
	}{
		{"", "", "svg"},
		{"", "login.json", "json"},
		{"", "login.txt", "svg"},
		{"dot", "login.svg", "dot"},
	}
	for _, tt := range tests {
		if got := watchFormat(tt.format, tt.output); got != tt.want {
			t.Errorf("watchFormat(%q, %q) = %q, want %q", tt.format, tt.output, got, tt.want)
		}
	}
}

func TestBuildWritesArtifact(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "login.mmd", loginFlow)
	output := filepath.Join(dir, "login.json")

	opts := pipeline.Options{Formats: []string{pipeline.FormatJSON}}
	r := c.build(context.Background(), pipeline.NewRunner(nil, nil, c.Logger), input, output, opts)
	if r.Err != nil {
		t.Fatal(r.Err)
	}
	if r.Wrote != output || len(r.Diagram.Actors) != 2 {
		t.Errorf("result = %+v", r)
	}
	g, err := graph.ReadGraphFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 6 {
		t.Errorf("artifact has %d nodes, want 6", g.NodeCount())
	}
}

func TestBuildFormatErrorWritesPlaceholder(t *testing.T) {
	c := newTestCLI(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "flow.mmd", "graph TD\nA-->B\n")
	output := filepath.Join(dir, "flow.svg")

	opts := pipeline.Options{Formats: []string{pipeline.FormatSVG}}
	r := c.build(context.Background(), pipeline.NewRunner(nil, nil, c.Logger), input, output, opts)
	if !sequence.IsFormatError(r.Err) {
		t.Fatalf("err = %v, want a format error", r.Err)
	}
	if r.Graph.NodeCount() != 0 {
		t.Errorf("graph has %d nodes, want the empty graph", r.Graph.NodeCount())
	}
	svg, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("placeholder not written: %v", err)
	}
	if !strings.Contains(string(svg), "graph TD") {
		t.Error("placeholder should carry the error notice")
	}
}

func TestFileWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "login.mmd", loginFlow)

	w, err := newFileWatcher(path, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	// Unrelated files in the same directory are ignored.
	writeFile(t, dir, "other.mmd", loginFlow)
	select {
	case <-w.Changes:
		t.Fatal("change reported for another file")
	case <-time.After(200 * time.Millisecond):
	}

	for range 5 {
		if err := os.WriteFile(path, []byte(loginFlow+"Client->>Server: again\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-w.Changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-w.Changes:
		t.Error("burst of writes reported more than once")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFileWatcherStopIsIdempotent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "login.mmd", loginFlow)
	w, err := newFileWatcher(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if w.debounce != defaultDebounce {
		t.Errorf("debounce = %v, want default", w.debounce)
	}
	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop returned %v", err)
	}
}

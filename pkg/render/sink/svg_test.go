package sink

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/layout"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

func project(t *testing.T, src string) graph.Graph {
	t.Helper()
	d, err := sequence.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return layout.Project(d)
}

func wellFormed(t *testing.T, svg []byte) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(string(svg)))
	for {
		_, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return
			}
			t.Fatalf("SVG is not well-formed XML: %v\n%s", err, svg)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	g := project(t, "sequenceDiagram\nparticipant C as Client\nC->>S: GET /a?x=1&y=2\nS-->>C: <ok>\nNote over C,S: done\nactivate S")
	svg := RenderSVG(g)
	wellFormed(t, svg)
	out := string(svg)

	checks := []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		`id="C"`,
		`id="S-lifeline"`,
		`id="msg-3"`,
		`id="e-msg-0-1"`,
		`id="e-msg-3-2"`,
		`>Client<`,
		`&amp;`,
		`&lt;ok&gt;`,
		`stroke="#2e7d32"`,
		`stroke="#7b1fa2"`,
		`stroke="#f57c00"`,
		`stroke="#00695c"`,
		`stroke-dasharray="5,5"`,
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %s", want)
		}
	}

	if got := strings.Count(out, `class="edge `); got != 8 {
		t.Errorf("edge lines = %d, want 8", got)
	}
	if got := strings.Count(out, `stroke-dasharray`); got != 4 {
		t.Errorf("dashed edges = %d, want 4 (response + note legs)", got)
	}
}

func TestRenderSVGDeterministic(t *testing.T) {
	g := project(t, "sequenceDiagram\nA->>B: 1\nB->>C: 2\nC-->>A: 3")
	if string(RenderSVG(g)) != string(RenderSVG(g)) {
		t.Error("RenderSVG output differs between runs")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	g := project(t, "sequenceDiagram\nA->>B: hi")
	out := string(RenderSVG(g, WithTitle("Login & Logout"), WithBackground("white")))

	if !strings.Contains(out, `class="title"`) || !strings.Contains(out, "Login &amp; Logout") {
		t.Error("title not rendered")
	}
	if !strings.Contains(out, `fill="white"`) {
		t.Error("background not rendered")
	}
	if !strings.Contains(out, `translate(0 30.0)`) {
		t.Error("content not shifted below title")
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	out := RenderSVG(graph.Empty(), WithMessage(`missing "sequenceDiagram" header`))
	wellFormed(t, out)
	s := string(out)
	if !strings.Contains(s, `width="400"`) {
		t.Error("empty graph should use the fallback canvas")
	}
	if !strings.Contains(s, `class="notice"`) || !strings.Contains(s, "header") {
		t.Error("notice not rendered")
	}
	if strings.Contains(s, `class="actor"`) {
		t.Error("empty graph rendered actor boxes")
	}
}

func TestRenderSVGSkipsDanglingEdge(t *testing.T) {
	g := project(t, "sequenceDiagram\nA->>B: hi")
	g.Edges = append(g.Edges, graph.Edge{ID: "e-bogus", Source: "nowhere", Target: "msg-0", Kind: "request"})
	if strings.Contains(string(RenderSVG(g)), "e-bogus") {
		t.Error("edge with unknown endpoint was drawn")
	}
}

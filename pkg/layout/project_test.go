package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

func mustParse(t *testing.T, src string) *sequence.Diagram {
	t.Helper()
	d, err := sequence.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return d
}

func TestProjectSingleMessage(t *testing.T) {
	g := Project(mustParse(t, "sequenceDiagram\nparticipant A\nparticipant B\nA->>B: Hello"))

	want := graph.Graph{
		Nodes: []graph.Node{
			{ID: "A", Type: "actor", Position: graph.Position{X: 50, Y: 50}, Data: graph.NodeData{Label: "A"}},
			{ID: "A-lifeline", Type: "lifeline", Position: graph.Position{X: 110, Y: 100}, Data: graph.NodeData{Height: 500}},
			{ID: "B", Type: "actor", Position: graph.Position{X: 250, Y: 50}, Data: graph.NodeData{Label: "B"}},
			{ID: "B-lifeline", Type: "lifeline", Position: graph.Position{X: 310, Y: 100}, Data: graph.NodeData{Height: 500}},
			{ID: "msg-0", Type: "message", Position: graph.Position{X: 150, Y: 150}, Data: graph.NodeData{Label: "Hello", MessageType: "request"}},
		},
		Edges: []graph.Edge{
			{ID: "e-msg-0-1", Source: "A-lifeline", Target: "msg-0", SourceHandle: "right", TargetHandle: "left", Kind: "request"},
			{ID: "e-msg-0-2", Source: "msg-0", Target: "B-lifeline", SourceHandle: "right", TargetHandle: "left", Kind: "request"},
		},
	}
	if diff := cmp.Diff(want, g); diff != "" {
		t.Errorf("Project mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectColumnsAndRows(t *testing.T) {
	g := Project(mustParse(t, "sequenceDiagram\nA->>B: X\nB->>C: Y\nC-->>A: Z"))

	tests := []struct {
		id   string
		x, y float64
	}{
		{"A", 50, 50},
		{"B", 250, 50},
		{"C", 450, 50},
		{"C-lifeline", 510, 100},
		{"msg-0", 150, 150}, // min(A, B) = column 0
		{"msg-1", 350, 210}, // min(B, C) = column 1
		{"msg-2", 150, 270}, // min(C, A) = column 0
	}
	for _, tt := range tests {
		n, ok := g.Node(tt.id)
		if !ok {
			t.Errorf("node %s missing", tt.id)
			continue
		}
		if n.Position.X != tt.x || n.Position.Y != tt.y {
			t.Errorf("%s at (%v, %v), want (%v, %v)", tt.id, n.Position.X, n.Position.Y, tt.x, tt.y)
		}
	}

	m0, _ := g.Node("msg-0")
	m1, _ := g.Node("msg-1")
	if m1.Position.Y <= m0.Position.Y {
		t.Errorf("later message not lower: msg-0 y=%v, msg-1 y=%v", m0.Position.Y, m1.Position.Y)
	}
}

func TestProjectSelfAndNote(t *testing.T) {
	g := Project(mustParse(t, "sequenceDiagram\nparticipant A\nparticipant B\nactivate B\nNote over B: busy"))

	for _, id := range []string{"msg-0", "msg-1"} {
		n, _ := g.Node(id)
		if n.Position.X != 350 {
			t.Errorf("%s x = %v, want 350 (below B)", id, n.Position.X)
		}
		edges := g.EdgesOf(id)
		if len(edges) != 2 {
			t.Fatalf("%s has %d edges, want 2", id, len(edges))
		}
		if edges[0].Source != "B-lifeline" || edges[1].Target != "B-lifeline" {
			t.Errorf("%s edges = %+v", id, edges)
		}
	}

	note, _ := g.Node("msg-1")
	if note.Data.MessageType != "note" {
		t.Errorf("note messageType = %q", note.Data.MessageType)
	}
	for _, e := range g.EdgesOf("msg-1") {
		if e.Kind != "note" {
			t.Errorf("edge %s kind = %q, want note", e.ID, e.Kind)
		}
	}
}

func TestProjectCounts(t *testing.T) {
	d := mustParse(t, "sequenceDiagram\nA->>B: 1\nB-->>A: 2\nNote over A,B: 3\nactivate A\ndeactivate A")
	g := Project(d)

	counts := g.CountByType()
	if counts[graph.NodeTypeActor] != 2 || counts[graph.NodeTypeLifeline] != 2 || counts[graph.NodeTypeMessage] != 5 {
		t.Errorf("CountByType = %v", counts)
	}
	if g.EdgeCount() != 10 {
		t.Errorf("edges = %d, want 10", g.EdgeCount())
	}

	for _, e := range g.Edges {
		src, _ := g.Node(e.Source)
		dst, _ := g.Node(e.Target)
		if src.IsMessage() && dst.IsMessage() {
			t.Errorf("edge %s connects two message nodes", e.ID)
		}
		if !src.IsMessage() && !dst.IsMessage() {
			t.Errorf("edge %s touches no message node", e.ID)
		}
	}
}

func TestProjectDropsDanglingMessage(t *testing.T) {
	d := &sequence.Diagram{
		Actors: []sequence.Actor{{ID: "A"}, {ID: "B"}},
		Messages: []sequence.Message{
			{From: "A", To: "B", Text: "one", Kind: sequence.KindRequest},
			{From: "A", To: "Ghost", Text: "lost", Kind: sequence.KindRequest},
			{From: "B", To: "A", Text: "three", Kind: sequence.KindResponse},
		},
	}
	g := Project(d)

	if _, ok := g.Node("msg-1"); ok {
		t.Error("dangling message node should be dropped")
	}
	if got := len(g.EdgesOf("msg-1")); got != 0 {
		t.Errorf("dangling message has %d edges, want 0", got)
	}
	if g.EdgeCount() != 4 {
		t.Errorf("edges = %d, want 4", g.EdgeCount())
	}

	// Siblings keep the positions they would have without the drop.
	full := Project(&sequence.Diagram{
		Actors: d.Actors,
		Messages: []sequence.Message{
			d.Messages[0],
			{From: "A", To: "B", Text: "placeholder", Kind: sequence.KindRequest},
			d.Messages[2],
		},
	})
	for _, id := range []string{"msg-0", "msg-2"} {
		got, _ := g.Node(id)
		want, _ := full.Node(id)
		if got.Position != want.Position {
			t.Errorf("%s moved: %+v, want %+v", id, got.Position, want.Position)
		}
	}
}

func TestProjectEmpty(t *testing.T) {
	for name, d := range map[string]*sequence.Diagram{
		"nil":   nil,
		"empty": {},
	} {
		g := Project(d)
		if g.NodeCount() != 0 || g.EdgeCount() != 0 {
			t.Errorf("%s: graph not empty: %+v", name, g)
		}
		if g.Nodes == nil || g.Edges == nil {
			t.Errorf("%s: nil slices", name)
		}
	}
}

func TestProjectIdempotent(t *testing.T) {
	d := mustParse(t, "sequenceDiagram\nparticipant U as User\nU->>F: login\nF->>B: auth\nB-->>F: token\nF-->>U: ok\nNote over U,B: flow")

	first, err := graph.MarshalGraph(Project(d))
	if err != nil {
		t.Fatal(err)
	}
	second, err := graph.MarshalGraph(Project(d))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("projection is not byte-for-byte stable")
	}
}

func TestProjectActorLabel(t *testing.T) {
	g := Project(mustParse(t, "sequenceDiagram\nparticipant U as User\nU->>S: hi"))
	n, _ := g.Node("U")
	if n.Data.Label != "User" {
		t.Errorf("actor label = %q, want User", n.Data.Label)
	}
}

func TestProjectWith(t *testing.T) {
	cfg := Config{
		ColumnWidth:     100,
		ActorX:          0,
		ActorY:          0,
		LifelineOffsetX: 58,
		LifelineY:       40,
		LifelineHeight:  300,
		MessageX:        60,
		MessageY:        80,
		RowHeight:       40,
	}
	g := ProjectWith(mustParse(t, "sequenceDiagram\nA->>B: 1\nB->>A: 2"), cfg)

	tests := []struct {
		id   string
		x, y float64
	}{
		{"B", 100, 0},
		{"B-lifeline", 158, 40},
		{"msg-1", 60, 120},
	}
	for _, tt := range tests {
		n, _ := g.Node(tt.id)
		if n.Position.X != tt.x || n.Position.Y != tt.y {
			t.Errorf("%s at (%v, %v), want (%v, %v)", tt.id, n.Position.X, n.Position.Y, tt.x, tt.y)
		}
	}
	ll, _ := g.Node("A-lifeline")
	if ll.Data.Height != 300 {
		t.Errorf("lifeline height = %v, want 300", ll.Data.Height)
	}
}

func TestWithDefaults(t *testing.T) {
	c := Config{ActorX: 10}.WithDefaults()
	d := DefaultConfig()
	if c.ColumnWidth != d.ColumnWidth || c.RowHeight != d.RowHeight || c.LifelineHeight != d.LifelineHeight {
		t.Errorf("WithDefaults = %+v", c)
	}
	if c.ActorX != 10 {
		t.Errorf("ActorX = %v, want 10", c.ActorX)
	}
}

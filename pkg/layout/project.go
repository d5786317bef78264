// Package layout projects a parsed sequence diagram onto a positioned
// node/edge graph.
//
// Each actor becomes a column holding an actor header node and a lifeline
// node. Each message becomes a row holding one message node, connected by two
// edges: from-lifeline → message and message → to-lifeline. Positions are
// linear in the column and row index, so identical diagrams always yield
// identical graphs.
//
// Projection never fails. A message whose endpoints are not in the actor list
// is dropped together with its edges; its row stays empty so sibling
// messages keep their positions.
package layout

import (
	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// Config holds the grid constants of the projection, in pixels.
type Config struct {
	ColumnWidth     float64 `json:"column_width" toml:"column_width"`
	ActorX          float64 `json:"actor_x" toml:"actor_x"`
	ActorY          float64 `json:"actor_y" toml:"actor_y"`
	LifelineOffsetX float64 `json:"lifeline_offset_x" toml:"lifeline_offset_x"`
	LifelineY       float64 `json:"lifeline_y" toml:"lifeline_y"`
	LifelineHeight  float64 `json:"lifeline_height" toml:"lifeline_height"`
	MessageX        float64 `json:"message_x" toml:"message_x"`
	MessageY        float64 `json:"message_y" toml:"message_y"`
	RowHeight       float64 `json:"row_height" toml:"row_height"`
}

// DefaultConfig returns the standard grid.
func DefaultConfig() Config {
	return Config{
		ColumnWidth:     200,
		ActorX:          50,
		ActorY:          50,
		LifelineOffsetX: 60,
		LifelineY:       100,
		LifelineHeight:  500,
		MessageX:        150,
		MessageY:        150,
		RowHeight:       60,
	}
}

// WithDefaults returns c with every non-positive width, height or spacing
// replaced by its default. Origins and offsets may legitimately be zero and
// are left alone.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.ColumnWidth <= 0 {
		c.ColumnWidth = d.ColumnWidth
	}
	if c.RowHeight <= 0 {
		c.RowHeight = d.RowHeight
	}
	if c.LifelineHeight <= 0 {
		c.LifelineHeight = d.LifelineHeight
	}
	return c
}

// Project lays out d on the default grid.
func Project(d *sequence.Diagram) graph.Graph {
	return ProjectWith(d, DefaultConfig())
}

// ProjectWith lays out d on the grid described by cfg. A nil diagram yields
// an empty graph.
func ProjectWith(d *sequence.Diagram, cfg Config) graph.Graph {
	out := graph.Empty()
	if d == nil {
		return out
	}

	columns := make(map[string]int, len(d.Actors))
	for i, a := range d.Actors {
		if _, dup := columns[a.ID]; dup {
			continue
		}
		columns[a.ID] = i
		col := float64(i) * cfg.ColumnWidth
		out.Nodes = append(out.Nodes,
			graph.Node{
				ID:       a.ID,
				Type:     graph.NodeTypeActor,
				Position: graph.Position{X: cfg.ActorX + col, Y: cfg.ActorY},
				Data:     graph.NodeData{Label: a.DisplayLabel()},
			},
			graph.Node{
				ID:       graph.LifelineID(a.ID),
				Type:     graph.NodeTypeLifeline,
				Position: graph.Position{X: cfg.ActorX + cfg.LifelineOffsetX + col, Y: cfg.LifelineY},
				Data:     graph.NodeData{Height: cfg.LifelineHeight},
			},
		)
	}

	for j, m := range d.Messages {
		fi, okFrom := columns[m.From]
		ti, okTo := columns[m.To]
		if !okFrom || !okTo {
			continue
		}

		id := graph.MessageID(j)
		kind := string(m.Kind)
		out.Nodes = append(out.Nodes, graph.Node{
			ID:   id,
			Type: graph.NodeTypeMessage,
			Position: graph.Position{
				X: cfg.MessageX + float64(min(fi, ti))*cfg.ColumnWidth,
				Y: cfg.MessageY + float64(j)*cfg.RowHeight,
			},
			Data: graph.NodeData{Label: m.Text, MessageType: kind},
		})
		out.Edges = append(out.Edges,
			leg(id, graph.LegIn, graph.LifelineID(m.From), id, kind),
			leg(id, graph.LegOut, id, graph.LifelineID(m.To), kind),
		)
	}

	return out
}

func leg(messageID string, n int, source, target, kind string) graph.Edge {
	return graph.Edge{
		ID:           graph.EdgeID(messageID, n),
		Source:       source,
		Target:       target,
		SourceHandle: graph.HandleRight,
		TargetHandle: graph.HandleLeft,
		Kind:         kind,
	}
}

package graph

// =============================================================================
// Geometry - Node Extents and Edge Anchors
// =============================================================================

// Fixed node extents in pixels. Lifeline height comes from NodeData.Height.
const (
	ActorWidth     = 120.0
	ActorHeight    = 40.0
	LifelineWidth  = 4.0
	MessageWidth   = 200.0
	MessageHeight  = 30.0
	DefaultPadding = 40.0
)

// Size returns the node's width and height.
func (n *Node) Size() (w, h float64) {
	switch n.Type {
	case NodeTypeActor:
		return ActorWidth, ActorHeight
	case NodeTypeLifeline:
		return LifelineWidth, n.Data.Height
	case NodeTypeMessage:
		return MessageWidth, MessageHeight
	}
	return 0, 0
}

// Center returns the midpoint of the node's box.
func (n *Node) Center() Position {
	w, h := n.Size()
	return Position{X: n.Position.X + w/2, Y: n.Position.Y + h/2}
}

// Bounds returns the width and height of the smallest box anchored at the
// origin that contains every node, plus padding on the right and bottom.
// An empty graph has zero bounds.
func (g Graph) Bounds(padding float64) (w, h float64) {
	if len(g.Nodes) == 0 {
		return 0, 0
	}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		nw, nh := n.Size()
		w = max(w, n.Position.X+nw)
		h = max(h, n.Position.Y+nh)
	}
	return w + padding, h + padding
}

// EdgePoints returns the start and end coordinates of an edge.
//
// The source leaves through its right handle and the target is entered
// through its left handle. A lifeline endpoint is placed at the height of the
// message it connects to, so both legs of a message are horizontal.
// ok is false when either endpoint is missing from the graph.
func (g Graph) EdgePoints(e Edge) (from, to Position, ok bool) {
	src, ok1 := g.Node(e.Source)
	dst, ok2 := g.Node(e.Target)
	if !ok1 || !ok2 {
		return Position{}, Position{}, false
	}
	from = handle(&src, HandleRight)
	to = handle(&dst, HandleLeft)
	if src.IsLifeline() {
		from.Y = dst.Center().Y
	}
	if dst.IsLifeline() {
		to.Y = src.Center().Y
	}
	return from, to, true
}

func handle(n *Node, side string) Position {
	w, _ := n.Size()
	c := n.Center()
	if side == HandleRight {
		return Position{X: n.Position.X + w, Y: c.Y}
	}
	return Position{X: n.Position.X, Y: c.Y}
}

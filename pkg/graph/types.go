package graph

import (
	"fmt"
	"strconv"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node types.
const (
	NodeTypeActor    = "actor"
	NodeTypeLifeline = "lifeline"
	NodeTypeMessage  = "message"
)

// Connection handles. Edges always leave a node on its right side and enter
// the next node on its left side.
const (
	HandleRight = "right"
	HandleLeft  = "left"
)

// Identifier scheme. Downstream consumers diff graphs by these ids, so they
// must stay stable.
const (
	LifelineSuffix = "-lifeline"
	MessagePrefix  = "msg-"
	edgePrefix     = "e-"
)

// Edge legs: every message node has exactly two incident edges.
const (
	LegIn  = 1 // from-lifeline → message
	LegOut = 2 // message → to-lifeline
)

// LifelineID returns the lifeline node id for an actor.
func LifelineID(actor string) string { return actor + LifelineSuffix }

// MessageID returns the node id for the message at index j.
func MessageID(j int) string { return MessagePrefix + strconv.Itoa(j) }

// EdgeID returns the id of one leg of a message's edge pair.
func EdgeID(messageID string, leg int) string {
	return fmt.Sprintf("%s%s-%d", edgePrefix, messageID, leg)
}

// =============================================================================
// Graph - Positioned Node/Edge Graph
// =============================================================================

// Graph is the canonical serialization format for positioned sequence graphs.
// Used for API responses, storage, caching, and renderer input.
//
// Nodes are ordered: all actor/lifeline pairs in column order, then message
// nodes in row order. Edges follow their message nodes, two per message.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Empty returns a graph with non-nil, empty node and edge slices. It is what
// consumers display when a diagram cannot be parsed.
func Empty() Graph {
	return Graph{Nodes: []Node{}, Edges: []Edge{}}
}

// =============================================================================
// Node
// =============================================================================

// Position is a node's top-left corner in pixels.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// NodeData is the kind-specific payload of a node.
//
//	actor:    Label
//	lifeline: Height
//	message:  Label, MessageType
type NodeData struct {
	Label       string  `json:"label,omitempty" bson:"label,omitempty"`
	Height      float64 `json:"height,omitempty" bson:"height,omitempty"`
	MessageType string  `json:"messageType,omitempty" bson:"messageType,omitempty"`
}

// Node is a positioned visual element.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Type     string   `json:"type" bson:"type"` // "actor", "lifeline", or "message"
	Position Position `json:"position" bson:"position"`
	Data     NodeData `json:"data" bson:"data"`
}

// IsActor returns true if this is an actor header node.
func (n *Node) IsActor() bool { return n.Type == NodeTypeActor }

// IsLifeline returns true if this is a lifeline node.
func (n *Node) IsLifeline() bool { return n.Type == NodeTypeLifeline }

// IsMessage returns true if this is a message node.
func (n *Node) IsMessage() bool { return n.Type == NodeTypeMessage }

// =============================================================================
// Edge
// =============================================================================

// Edge connects a lifeline to a message node or a message node to a lifeline.
// Kind mirrors the message kind of the message node it touches.
type Edge struct {
	ID           string `json:"id" bson:"id"`
	Source       string `json:"source" bson:"source"`
	Target       string `json:"target" bson:"target"`
	SourceHandle string `json:"sourceHandle" bson:"sourceHandle"`
	TargetHandle string `json:"targetHandle" bson:"targetHandle"`
	Kind         string `json:"kind" bson:"kind"`
}

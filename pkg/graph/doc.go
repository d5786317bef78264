// Package graph provides the serialization types for positioned sequence
// graphs.
//
// This package defines the canonical wire format for seqflow's layout output,
// used for JSON files, API responses, the document store, and renderer input.
//
// # Core Types
//
//   - [Graph]: positioned nodes plus directed edges
//   - [Node]: an actor header, a lifeline, or a message box
//   - [Edge]: one leg of a message, lifeline → message or message → lifeline
//
// # Identifier Scheme
//
// Ids are positional and stable so consumers can diff successive graphs:
//
//	actor node      <actor>                  e.g. "Alice"
//	lifeline node   <actor>-lifeline         e.g. "Alice-lifeline"
//	message node    msg-<index>              e.g. "msg-3"
//	edges           e-msg-<index>-1 / -2     in-leg and out-leg
//
// Use [LifelineID], [MessageID] and [EdgeID] rather than formatting ids by hand.
//
// # Serialization
//
//	{
//	  "nodes": [
//	    {"id": "A", "type": "actor", "position": {"x": 50, "y": 50}, "data": {"label": "A"}},
//	    {"id": "A-lifeline", "type": "lifeline", "position": {"x": 110, "y": 100}, "data": {"height": 500}}
//	  ],
//	  "edges": []
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("flow.json")   // File → Graph
//	graph.WriteGraphFile(g, "output.json")     // Graph → File
//	data, _ := graph.MarshalGraph(g)           // Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)    // []byte → Graph
//
// # Geometry
//
// Node extents are fixed per type (see [ActorWidth], [MessageWidth], ...);
// [Graph.Bounds] and [Graph.EdgePoints] give renderers the canvas size and
// line endpoints.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph

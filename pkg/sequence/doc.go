// Package sequence parses a subset of the Mermaid sequence diagram notation
// into an ordered model of actors and messages.
//
// # Grammar
//
// The first non-empty line must start with the [Header] marker. Every other
// non-empty line is trimmed and matched against a fixed, ordered list of
// statement rules; the first rule that matches wins:
//
//	participant A            declare actor A
//	participant A as Alice   declare actor A with display label "Alice"
//	A->>B: text              request  (solid arrow, also A->B)
//	A-->>B: text             response (dashed arrow, also A-->B)
//	Note over A: text        note on A
//	Note over A,B: text      note spanning A and B (also "left of A", "right of A")
//	activate A               activation marker on A
//	deactivate A             deactivation marker on A
//
// Lines that match no rule are ignored. A missing header is the only fatal
// error and yields a [*FormatError]; every other anomaly degrades gracefully
// by skipping the offending line.
//
// # Ordering
//
// [Diagram.Actors] lists actors in order of first mention across all
// statements. [Diagram.Messages] lists messages in source order. Both orders
// are load-bearing: the layout projector derives columns and rows from them.
//
// # Usage
//
//	d, err := sequence.Parse(text)
//	if sequence.IsFormatError(err) {
//	    // cannot render
//	}
//	g := layout.Project(d)
package sequence

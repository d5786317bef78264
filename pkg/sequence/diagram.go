package sequence

// Header is the marker the first non-empty line of a diagram must start with.
const Header = "sequenceDiagram"

// MessageKind classifies a message. The set is closed.
type MessageKind string

const (
	// KindRequest is a solid-arrow message.
	KindRequest MessageKind = "request"
	// KindResponse is a dashed-arrow message.
	KindResponse MessageKind = "response"
	// KindNote is an annotation scoped to one or two actors.
	KindNote MessageKind = "note"
	// KindActivation is a self-referential activate/deactivate marker.
	KindActivation MessageKind = "activation"
)

// Kinds lists every message kind in a stable order.
var Kinds = []MessageKind{KindRequest, KindResponse, KindNote, KindActivation}

// Valid reports whether k is one of the four known kinds.
func (k MessageKind) Valid() bool {
	switch k {
	case KindRequest, KindResponse, KindNote, KindActivation:
		return true
	}
	return false
}

// Text literals recorded for activation markers.
const (
	ActivateText   = "Activate"
	DeactivateText = "Deactivate"
)

// Actor is a participant in the interaction.
type Actor struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"` // alias from "participant X as Label"
}

// DisplayLabel returns the label if set, otherwise the ID.
func (a Actor) DisplayLabel() string {
	if a.Label != "" {
		return a.Label
	}
	return a.ID
}

// Message is one interaction event between two actors.
type Message struct {
	From string      `json:"from"`
	To   string      `json:"to"`
	Text string      `json:"text"`
	Kind MessageKind `json:"kind"`
}

// IsSelf reports whether the message starts and ends at the same actor.
func (m Message) IsSelf() bool { return m.From == m.To }

// Diagram is the parsed intermediate model: actors in discovery order and
// messages in source order. A Diagram returned by Parse is not modified
// afterwards.
type Diagram struct {
	Actors   []Actor   `json:"actors"`
	Messages []Message `json:"messages"`
}

// ActorIDs returns the actor identifiers in discovery order.
func (d *Diagram) ActorIDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, len(d.Actors))
	for i, a := range d.Actors {
		ids[i] = a.ID
	}
	return ids
}

// ActorIndex returns the column of the actor with the given id, or -1.
func (d *Diagram) ActorIndex(id string) int {
	if d == nil {
		return -1
	}
	for i, a := range d.Actors {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Actor returns the actor with the given id.
func (d *Diagram) Actor(id string) (Actor, bool) {
	if i := d.ActorIndex(id); i >= 0 {
		return d.Actors[i], true
	}
	return Actor{}, false
}

// CountByKind tallies messages per kind.
func (d *Diagram) CountByKind() map[MessageKind]int {
	counts := make(map[MessageKind]int, len(Kinds))
	if d == nil {
		return counts
	}
	for _, m := range d.Messages {
		counts[m.Kind]++
	}
	return counts
}

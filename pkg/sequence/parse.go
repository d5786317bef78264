package sequence

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	apperrors "github.com/matzehuels/seqflow/pkg/errors"
)

// FormatError reports a diagram whose first non-empty line does not start
// with [Header]. Parse returns it wrapped in an INVALID_FORMAT coded error.
type FormatError struct {
	// Line is the offending first non-empty line, or "" for empty input.
	Line string
}

func (e *FormatError) Error() string {
	if e.Line == "" {
		return "input is empty"
	}
	return fmt.Sprintf("first non-empty line is %q", e.Line)
}

// IsFormatError reports whether err carries a [*FormatError].
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

func formatError(line string) error {
	return apperrors.Wrap(apperrors.ErrCodeInvalidFormat, &FormatError{Line: line}, "missing %q header", Header)
}

// Parse converts diagram text into a Diagram.
//
// Parse fails only when the header is missing; lines it cannot classify are
// skipped. The returned Diagram always has non-nil Actors and Messages.
func Parse(text string) (*Diagram, error) {
	acc := newAccumulator()
	headerSeen := false

	for raw := range strings.Lines(text) {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !headerSeen {
			if !strings.HasPrefix(line, Header) {
				return nil, formatError(line)
			}
			headerSeen = true
			continue
		}
		acc.fold(line)
	}

	if !headerSeen {
		return nil, formatError("")
	}
	return acc.diagram(), nil
}

// Read parses the full contents of r.
func Read(r io.Reader) (*Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read diagram: %w", err)
	}
	return Parse(string(data))
}

// ReadFile parses the diagram stored at path.
func ReadFile(path string) (*Diagram, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "diagram file not found: %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return Parse(string(data))
}

// =============================================================================
// Line Rules
// =============================================================================

// outcome is the result of applying one rule to one line.
type outcome int

const (
	noMatch  outcome = iota // rule does not apply; try the next one
	consumed                // rule applied without producing a message
	produced                // rule appended exactly one message
)

// rule classifies a single trimmed line. Rules are tried in slice order and
// the first one that does not return noMatch ends classification.
type rule struct {
	name  string
	apply func(acc *accumulator, line string) outcome
}

var rules = []rule{
	{name: "participant", apply: applyParticipant},
	{name: "message", apply: applyMessage},
	{name: "note", apply: applyNote},
	{name: "activation", apply: applyActivation},
}

var (
	participantRE = regexp.MustCompile(`^participant\s+(\w+)(?:\s+as\s+(.+))?`)
	messageRE     = regexp.MustCompile(`^(\w+)\s*(-->>|->>|-->|->)\s*(\w+)\s*:(.*)$`)
	noteKeywordRE = regexp.MustCompile(`^Note\b`)
	noteRE        = regexp.MustCompile(`^Note\s+(?:over|left of|right of)\s+(\w+)(?:\s*,\s*(\w+))?\s*:(.*)$`)
	activationRE  = regexp.MustCompile(`^(activate|deactivate)\s+(\w+)`)
)

func applyParticipant(acc *accumulator, line string) outcome {
	m := participantRE.FindStringSubmatch(line)
	if m == nil {
		return noMatch
	}
	i := acc.addActor(m[1])
	if alias := strings.TrimSpace(m[2]); alias != "" && acc.actors[i].Label == "" {
		acc.actors[i].Label = alias
	}
	return consumed
}

func applyMessage(acc *accumulator, line string) outcome {
	m := messageRE.FindStringSubmatch(line)
	if m == nil {
		return noMatch
	}
	from, arrow, to := m[1], m[2], m[3]
	acc.addActor(from)
	acc.addActor(to)
	acc.emit(Message{
		From: from,
		To:   to,
		Text: strings.TrimSpace(m[4]),
		Kind: ArrowKind(arrow),
	})
	return produced
}

func applyNote(acc *accumulator, line string) outcome {
	if !noteKeywordRE.MatchString(line) {
		return noMatch
	}
	m := noteRE.FindStringSubmatch(line)
	if m == nil {
		// A note without a scope actor is recognized but dropped.
		return consumed
	}
	from, to := m[1], m[2]
	if to == "" {
		to = from
	}
	acc.addActor(from)
	acc.addActor(to)
	acc.emit(Message{
		From: from,
		To:   to,
		Text: strings.TrimSpace(m[3]),
		Kind: KindNote,
	})
	return produced
}

func applyActivation(acc *accumulator, line string) outcome {
	m := activationRE.FindStringSubmatch(line)
	if m == nil {
		return noMatch
	}
	text := ActivateText
	if m[1] == "deactivate" {
		text = DeactivateText
	}
	actor := m[2]
	acc.addActor(actor)
	acc.emit(Message{From: actor, To: actor, Text: text, Kind: KindActivation})
	return produced
}

// ArrowKind classifies an arrow token: dashed arrows are responses, solid
// arrows are requests.
func ArrowKind(arrow string) MessageKind {
	if strings.HasPrefix(arrow, "--") {
		return KindResponse
	}
	return KindRequest
}

// =============================================================================
// Accumulator
// =============================================================================

// accumulator is the state threaded through the line fold.
type accumulator struct {
	actors   []Actor
	index    map[string]int
	messages []Message
}

func newAccumulator() *accumulator {
	return &accumulator{
		actors:   []Actor{},
		index:    make(map[string]int),
		messages: []Message{},
	}
}

// fold classifies line and applies the first matching rule.
func (a *accumulator) fold(line string) outcome {
	for _, r := range rules {
		if o := r.apply(a, line); o != noMatch {
			return o
		}
	}
	return noMatch
}

// addActor registers id on first mention and returns its column.
func (a *accumulator) addActor(id string) int {
	if i, ok := a.index[id]; ok {
		return i
	}
	a.index[id] = len(a.actors)
	a.actors = append(a.actors, Actor{ID: id})
	return len(a.actors) - 1
}

func (a *accumulator) emit(m Message) {
	a.messages = append(a.messages, m)
}

func (a *accumulator) diagram() *Diagram {
	return &Diagram{Actors: a.actors, Messages: a.messages}
}

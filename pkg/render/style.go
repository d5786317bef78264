package render

import (
	"bytes"
	"encoding/xml"
)

// Style is the visual treatment of one message kind.
type Style struct {
	Stroke    string // line and border color
	Fill      string // message box background
	DashArray string // SVG stroke-dasharray, empty for solid lines
}

// Dashed reports whether lines of this style are dashed.
func (s Style) Dashed() bool { return s.DashArray != "" }

// Fixed colors for the non-message node types.
const (
	ActorStroke    = "#01579b"
	ActorFill      = "#e1f5fe"
	LifelineColor  = "#666666"
	StrokeWidth    = 2.0
	dashPattern    = "5,5"
	unknownStroke  = "#666666"
	unknownFill    = "#f5f5f5"
	requestStroke  = "#2e7d32"
	responseStroke = "#7b1fa2"
	noteStroke     = "#f57c00"
	activeStroke   = "#00695c"
)

var styles = map[string]Style{
	"request":    {Stroke: requestStroke, Fill: "#e8f5e8"},
	"response":   {Stroke: responseStroke, Fill: "#f3e5f5", DashArray: dashPattern},
	"note":       {Stroke: noteStroke, Fill: "#fff3e0", DashArray: dashPattern},
	"activation": {Stroke: activeStroke, Fill: "#e0f2f1"},
}

// StyleFor returns the style for a message kind. Unknown kinds get a neutral
// grey so a renderer never fails on foreign input.
func StyleFor(kind string) Style {
	if s, ok := styles[kind]; ok {
		return s
	}
	return Style{Stroke: unknownStroke, Fill: unknownFill}
}

// EscapeXML escapes s for use as SVG text or attribute content.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Truncate shortens label to fit width pixels at the given font size,
// marking the cut with "..". Width is estimated per rune.
func Truncate(label string, width, fontSize float64) string {
	const charWidth = 0.55
	maxChars := max(3, int(width/(fontSize*charWidth)))
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

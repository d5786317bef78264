package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// kindStyles colors the kind column.
var kindStyles = map[sequence.MessageKind]lipgloss.Style{
	sequence.KindRequest:    lipgloss.NewStyle().Foreground(colorCyan),
	sequence.KindResponse:   lipgloss.NewStyle().Foreground(colorGreen),
	sequence.KindNote:       lipgloss.NewStyle().Foreground(colorYellow),
	sequence.KindActivation: lipgloss.NewStyle().Foreground(colorGray),
}

// =============================================================================
// Messages
// =============================================================================

// buildResult is the outcome of one rebuild of the watched file.
type buildResult struct {
	Diagram *sequence.Diagram
	Graph   graph.Graph
	Err     error
	Wrote   string // artifact path, empty when nothing was written
	Hit     bool
	At      time.Time
	Took    time.Duration
}

type fileChangedMsg struct{}

type builtMsg buildResult

type watchErrMsg struct{ err error }

// =============================================================================
// WatchModel - live view of a diagram file
// =============================================================================

// WatchModel is the bubbletea model behind `seqflow watch`.
type WatchModel struct {
	Path     string
	Result   *buildResult
	Builds   int
	WatchErr error
	Height   int

	build   func() buildResult
	changes <-chan struct{}
	errs    <-chan error
}

// NewWatchModel creates a model that calls build once at start and again for
// every value received on changes.
func NewWatchModel(path string, build func() buildResult, changes <-chan struct{}, errs <-chan error) WatchModel {
	return WatchModel{
		Path:    path,
		Height:  15,
		build:   build,
		changes: changes,
		errs:    errs,
	}
}

func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.buildCmd(), m.waitCmd())
}

func (m WatchModel) buildCmd() tea.Cmd {
	build := m.build
	return func() tea.Msg { return builtMsg(build()) }
}

// waitCmd blocks until the next change or watcher error.
func (m WatchModel) waitCmd() tea.Cmd {
	changes, errs := m.changes, m.errs
	return func() tea.Msg {
		select {
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			return fileChangedMsg{}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return watchErrMsg{err}
		}
	}
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.buildCmd()
		}
	case fileChangedMsg:
		return m, tea.Batch(m.buildCmd(), m.waitCmd())
	case watchErrMsg:
		m.WatchErr = msg.err
		return m, m.waitCmd()
	case builtMsg:
		r := buildResult(msg)
		m.Result = &r
		m.Builds++
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m WatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("seqflow watch"))
	b.WriteString(" ")
	b.WriteString(StyleValue.Render(filepath.Base(m.Path)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("r rebuild  q quit"))
	b.WriteString("\n\n")

	if m.WatchErr != nil {
		b.WriteString(StyleWarning.Render("watcher: " + m.WatchErr.Error()))
		b.WriteString("\n\n")
	}

	r := m.Result
	if r == nil {
		b.WriteString(listDimStyle.Render("building..."))
		b.WriteString("\n")
		return b.String()
	}

	if r.Err != nil {
		b.WriteString(listErrorStyle.Render(iconError + " " + r.Err.Error()))
		b.WriteString("\n")
		b.WriteString(statsLine(0, 0, r.Graph.NodeCount(), r.Graph.EdgeCount(), false))
		b.WriteString("\n")
	} else {
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " ")
		b.WriteString(fmt.Sprintf("build #%d in %s", m.Builds, r.Took.Round(time.Millisecond)))
		b.WriteString("\n")
		b.WriteString(statsLine(len(r.Diagram.Actors), len(r.Diagram.Messages),
			r.Graph.NodeCount(), r.Graph.EdgeCount(), r.Hit))
		b.WriteString("\n\n")
		b.WriteString(m.messageTable(r.Diagram))
		b.WriteString("\n")
	}

	if r.Wrote != "" {
		b.WriteString("\n  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(r.Wrote))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render("  updated " + r.At.Format("15:04:05")))
	b.WriteString("\n")
	return b.String()
}

// messageTable lists the first Height messages.
func (m WatchModel) messageTable(d *sequence.Diagram) string {
	msgs := d.Messages
	more := 0
	if len(msgs) > m.Height {
		more = len(msgs) - m.Height
		msgs = msgs[:m.Height]
	}

	rows := make([][]string, len(msgs))
	for i, msg := range msgs {
		rows[i] = []string{strconv.Itoa(i), msg.From, msg.To, string(msg.Kind), msg.Text}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "From", "To", "Kind", "Text").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 3 && row >= 0 && row < len(msgs) {
				return kindStyles[msgs[row].Kind]
			}
			if col == 0 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	out := t.Render()
	if more > 0 {
		out += "\n" + listDimStyle.Render(fmt.Sprintf("  … %d more", more))
	}
	return out
}

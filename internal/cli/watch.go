package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/pipeline"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

type watchFlags struct {
	output   string
	format   string
	plain    bool
	noCache  bool
	debounce time.Duration
	grid     gridFlags
}

// watchCommand creates the watch command, which rebuilds on every save.
func (c *CLI) watchCommand() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch <diagram.mmd>",
		Short: "Re-parse and re-render a diagram whenever it changes",
		Long: `Watch a diagram file and rebuild it on every save.

The live view lists the parsed messages and the graph size. With --output the
artifact is rewritten after each build; a document that lost its
sequenceDiagram header is drawn as an empty graph with the error notice, so
a preview never goes stale silently.

Use --plain when stdout is not a terminal.`,
		Example: `  seqflow watch login.mmd
  seqflow watch login.mmd -o login.svg
  seqflow watch login.mmd -o login.json -f json --plain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "artifact to rewrite after each build")
	f.StringVarP(&flags.format, "format", "f", "", "artifact format (default: from --output extension, else svg)")
	f.BoolVar(&flags.plain, "plain", false, "log builds instead of the interactive view")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	f.DurationVar(&flags.debounce, "debounce", defaultDebounce, "quiet period before rebuilding")
	flags.grid.register(f)

	return cmd
}

// watchFormat picks the artifact format from the flag or the output extension.
func watchFormat(format, output string) string {
	if format != "" {
		return format
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); pipeline.ValidFormats[ext] {
		return ext
	}
	return pipeline.FormatSVG
}

func (c *CLI) runWatch(ctx context.Context, input string, flags watchFlags) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}

	opts := c.baseOptions()
	opts.Layout = flags.grid.apply(opts.Layout)
	opts.Formats = []string{watchFormat(flags.format, flags.output)}
	if !flags.plain {
		// The live view owns the terminal.
		opts.Logger = nil
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	if !flags.plain {
		runner.Logger = opts.Logger
	}

	w, err := newFileWatcher(input, flags.debounce)
	if err != nil {
		return err
	}
	defer w.Stop()
	w.Start(ctx)

	build := func() buildResult {
		return c.build(ctx, runner, input, flags.output, opts)
	}

	if flags.plain {
		return c.watchPlain(ctx, input, build, w)
	}

	p := tea.NewProgram(NewWatchModel(input, build, w.Changes, w.Errors),
		tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// watchPlain logs one line per build until ctx ends.
func (c *CLI) watchPlain(ctx context.Context, input string, build func() buildResult, w *fileWatcher) error {
	printInfo("Watching %s (ctrl+c to stop)", input)
	report := func(r buildResult) {
		if r.Err != nil {
			printError("%v", r.Err)
			return
		}
		printSuccess("Rebuilt %s in %s", input, r.Took.Round(time.Millisecond))
		printStats(len(r.Diagram.Actors), len(r.Diagram.Messages), r.Graph.NodeCount(), r.Graph.EdgeCount(), r.Hit)
		if r.Wrote != "" {
			printFile(r.Wrote)
		}
	}

	report(build())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Changes:
			report(build())
		case err := <-w.Errors:
			printWarning("watcher: %v", err)
		}
	}
}

// build runs the pipeline once on the current file contents and writes the
// artifact when output is set. Format errors write the error placeholder.
func (c *CLI) build(ctx context.Context, runner *pipeline.Runner, input, output string, opts pipeline.Options) buildResult {
	start := time.Now()
	r := buildResult{Graph: graph.Empty(), At: start}

	source, err := c.readSource(input)
	if err != nil {
		r.Err = err
		return r
	}

	result, err := runner.Execute(ctx, source, opts)
	r.Took = time.Since(start)
	if err != nil {
		r.Err = err
		if output != "" && sequence.IsFormatError(err) {
			if data, ok := pipeline.RenderError(err, opts)[opts.Formats[0]]; ok {
				if werr := writeArtifact(output, data); werr == nil {
					r.Wrote = output
				}
			}
		}
		return r
	}

	r.Diagram, r.Graph, r.Hit = result.Diagram, result.Graph, result.CacheInfo.RenderHit
	if output != "" {
		if err := writeArtifact(output, result.Artifacts[opts.Formats[0]]); err != nil {
			r.Err = err
			return r
		}
		r.Wrote = output
	}
	return r
}

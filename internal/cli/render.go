package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqflow/pkg/graph"
	"github.com/matzehuels/seqflow/pkg/pipeline"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	output     string
	formats    string
	engine     string
	title      string
	background string
	detailed   bool
	scale      float64
	noCache    bool
	refresh    bool
	grid       gridFlags
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render <diagram.mmd | graph.json | ->",
		Short: "Render a sequence diagram to SVG, PNG, PDF, DOT or JSON",
		Long: `Render a sequence diagram to one or more output formats.

The input is either diagram text or a graph.json written by 'layout'; files
ending in .json are read as graphs and skip parsing and projection.

Engines:
  native    draws the graph at its projected coordinates (default)
  graphviz  feeds the DOT export to Graphviz for a node-link view

PNG and PDF from the native engine need rsvg-convert on PATH.
Rendered artifacts are cached by graph content and render options.`,
		Example: `  seqflow render login.mmd
  seqflow render login.mmd -f svg,png -o out/login
  seqflow render login.graph.json --engine graphviz --detailed
  seqflow render - -f dot < login.mmd`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file (single format) or base path (multiple)")
	f.StringVarP(&flags.formats, "format", "f", "", "output format(s): svg, png, pdf, dot, json (comma-separated)")
	f.StringVar(&flags.engine, "engine", "", "render engine: native, graphviz")
	f.StringVar(&flags.title, "title", "", "title drawn above the diagram")
	f.StringVar(&flags.background, "background", "", "background color (CSS color)")
	f.BoolVar(&flags.detailed, "detailed", false, "show node types and positions (graphviz, dot)")
	f.Float64Var(&flags.scale, "scale", 0, "PNG scale factor")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&flags.refresh, "refresh", false, "re-render and overwrite cached artifacts")
	flags.grid.register(f)

	return cmd
}

// renderOptions overlays the flags that were set on the config defaults.
func (c *CLI) renderOptions(cmd *cobra.Command, flags renderFlags) (pipeline.Options, error) {
	opts := c.baseOptions()
	opts.Layout = flags.grid.apply(opts.Layout)

	if cmd.Flags().Changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(flags.formats)
	}
	if flags.engine != "" {
		opts.Engine = flags.engine
	}
	if flags.title != "" {
		opts.Title = flags.title
	}
	if flags.background != "" {
		opts.Background = flags.background
	}
	if flags.scale != 0 {
		opts.Scale = flags.scale
	}
	opts.Detailed = flags.detailed
	opts.Refresh = flags.refresh

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (c *CLI) runRender(ctx context.Context, input string, cmd *cobra.Command, flags renderFlags) error {
	opts, err := c.renderOptions(cmd, flags)
	if err != nil {
		return err
	}

	targets, err := renderTargets(flags.output, input, opts.Formats)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
	spinner.Start()

	var (
		artifacts        map[string][]byte
		actors, messages int
		g                graph.Graph
		hit              bool
	)
	if isGraphFile(input) {
		g, err = graph.ReadGraphFile(input)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("load graph %s: %w", input, err)
		}
		var rendered pipeline.Rendered
		rendered, err = runner.RenderWithCacheInfo(ctx, g, opts)
		artifacts, hit = rendered.Artifacts, rendered.Hit
		actors = len(g.NodesOfType(graph.NodeTypeActor))
		messages = len(g.NodesOfType(graph.NodeTypeMessage))
	} else {
		var source string
		if source, err = c.readSource(input); err == nil {
			var result *pipeline.Result
			if result, err = runner.Execute(ctx, source, opts); err == nil {
				artifacts, g, hit = result.Artifacts, result.Graph, result.CacheInfo.RenderHit
				actors, messages = result.Stats.ActorCount, result.Stats.MessageCount
			}
		}
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		if sequence.IsFormatError(err) {
			printDetail("%s does not start with %q", input, sequence.Header)
		}
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	var written []string
	for _, format := range opts.Formats {
		path := targets[format]
		if err := writeArtifact(path, artifacts[format]); err != nil {
			return err
		}
		if path != "" {
			written = append(written, path)
		}
	}
	if len(written) == 0 {
		return nil
	}

	printSuccess("Render complete")
	for _, path := range written {
		printFile(path)
	}
	printStats(actors, messages, g.NodeCount(), g.EdgeCount(), hit)
	return nil
}

// renderTargets maps each format to its output path; "" means stdout.
func renderTargets(output, input string, formats []string) (map[string]string, error) {
	targets := make(map[string]string, len(formats))
	if len(formats) == 1 {
		switch {
		case output != "":
			targets[formats[0]] = output
		case input != stdinArg:
			targets[formats[0]] = basePath("", input) + "." + formats[0]
		}
		return targets, nil
	}
	if output == "" && input == stdinArg {
		return nil, errors.New("rendering several formats from stdin needs --output")
	}
	base := basePath(output, input)
	for _, f := range formats {
		targets[f] = base + "." + f
	}
	for _, path := range targets {
		if path == input {
			return nil, fmt.Errorf("output %s would overwrite the input; pass --output", path)
		}
	}
	return targets, nil
}

// basePath strips a known format extension from output, or derives the base
// from input when output is empty. A graph.json input drops both suffixes.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".graph")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func isGraphFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// writeArtifact writes data to path, creating parent directories, or to
// stdout when path is empty.
func writeArtifact(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

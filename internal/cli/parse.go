package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqflow/pkg/pipeline"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// parseCommand creates the parse command, which prints the intermediate
// diagram model as JSON.
func (c *CLI) parseCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "parse <diagram.mmd | ->",
		Short: "Parse a sequence diagram into actors and messages",
		Long: `Parse a Mermaid sequenceDiagram into its intermediate model: the ordered
actor list and the ordered message list, each message classified as request,
response, note or activation.

Lines the parser does not recognize are skipped. The only hard error is a
document whose first non-empty line is not "sequenceDiagram".`,
		Example: `  seqflow parse login.mmd
  cat login.mmd | seqflow parse - -o login.model.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runParse(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func (c *CLI) runParse(ctx context.Context, input, output string) error {
	source, err := c.readSource(input)
	if err != nil {
		return err
	}

	p := newProgress(c.Logger)
	d, err := pipeline.Parse(ctx, source)
	if err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}
	p.done(fmt.Sprintf("Parsed %d actors, %d messages", len(d.Actors), len(d.Messages)))

	if output == "" {
		return writeDiagram(os.Stdout, d)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := writeDiagram(f, d); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	printSuccess("Parsed %s", input)
	printFile(output)
	printDetail("%s · %s", plural(len(d.Actors), "actor"), plural(len(d.Messages), "message"))
	return nil
}

func writeDiagram(w io.Writer, d *sequence.Diagram) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

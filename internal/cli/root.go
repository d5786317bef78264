package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/seqflow/internal/config"
	"github.com/matzehuels/seqflow/pkg/observability"
)

// loadConfig reads the config file named by --config or found in the
// default locations. At debug level the pipeline, cache and HTTP hooks are
// routed to the logger.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	if c.Logger.GetLevel() <= LogDebug {
		observability.NewLogHooks(c.Logger).Register()
	}
	return nil
}

// readSource reads diagram text from path, or from stdin when path is "-".
func (c *CLI) readSource(path string) (string, error) {
	if path == stdinArg {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// outputPath picks where a command writes. An explicit output wins; stdin
// input without one writes to stdout (""); otherwise the input's extension
// is replaced by suffix.
func outputPath(output, input, suffix string) string {
	if output != "" {
		return output
	}
	if input == stdinArg {
		return ""
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

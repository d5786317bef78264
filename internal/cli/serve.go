package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seqflow/internal/config"
	"github.com/matzehuels/seqflow/internal/server"
	"github.com/matzehuels/seqflow/pkg/cache"
	"github.com/matzehuels/seqflow/pkg/storage"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		mongoURI string
		storeDir string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parse, layout and render API over HTTP",
		Long: `Serve the seqflow HTTP API.

Saved diagrams go to MongoDB when --mongo-uri (or server.mongo_uri) is set,
to JSON files under --store-dir when that is set, and otherwise stay in
memory for the life of the process. Rendered artifacts and stored documents
are cached in the configured cache backend.`,
		Example: `  seqflow serve
  seqflow serve --addr :9000 --store-dir ./diagrams
  seqflow serve --mongo-uri mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if mongoURI != "" {
				cfg.MongoURI = mongoURI
			}
			if storeDir != "" {
				cfg.StoreDir = storeDir
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection string for saved diagrams")
	cmd.Flags().StringVar(&storeDir, "store-dir", "", "directory for saved diagrams (file store)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.ServerConfig, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, backend, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if _, null := runner.Cache.(*cache.NullCache); !null {
		store = storage.NewCachedStore(store, runner.Cache, runner.Keyer, c.Logger)
	}
	defer store.Close()

	printKeyValue("listen", cfg.Addr)
	printKeyValue("store", backend)
	printKeyValue("cache", c.Config.Cache.Backend)

	srv := server.New(runner, store, c.baseOptions(), c.Logger)
	return srv.Run(ctx, cfg.Addr, cfg.ShutdownTimeout)
}

// openStore picks the document store: MongoDB, then files, then memory.
func (c *CLI) openStore(ctx context.Context, cfg config.ServerConfig) (storage.Store, string, error) {
	switch {
	case cfg.MongoURI != "":
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		s, err := storage.NewMongoStore(connectCtx, storage.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.Database,
		})
		if err != nil {
			return nil, "", fmt.Errorf("open mongo store: %w", err)
		}
		return s, "mongo " + cfg.Database, nil
	case cfg.StoreDir != "":
		s, err := storage.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, "", fmt.Errorf("open file store: %w", err)
		}
		return s, "file " + s.Path(), nil
	default:
		c.Logger.Warn("saved diagrams are kept in memory and lost on exit")
		return storage.NewMemoryStore(), "memory", nil
	}
}

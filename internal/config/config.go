// Package config loads the seqflow TOML configuration file.
//
// Lookup order: an explicit path (--config), then
// $XDG_CONFIG_HOME/seqflow/config.toml, then ~/.config/seqflow/config.toml.
// A missing file is not an error and yields [Default]; an explicit path that
// does not exist is. Unknown keys are rejected so typos surface early.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/seqflow/pkg/layout"
)

const appName = "seqflow"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the root configuration structure.
type Config struct {
	Layout layout.Config `toml:"layout"`
	Render RenderConfig  `toml:"render"`
	Cache  CacheConfig   `toml:"cache"`
	Server ServerConfig  `toml:"server"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// RenderConfig holds default render settings for the CLI and the API.
type RenderConfig struct {
	Formats    []string `toml:"formats"`
	Engine     string   `toml:"engine"`
	Title      string   `toml:"title"`
	Background string   `toml:"background"`
	Scale      float64  `toml:"scale"`
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend       string `toml:"backend"` // file | redis | none
	Dir           string `toml:"dir"`     // default $XDG_CACHE_HOME/seqflow
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"` // key prefix for shared Redis instances
}

// ServerConfig configures `seqflow serve`.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	MongoURI        string        `toml:"mongo_uri"` // empty → file or in-memory store
	Database        string        `toml:"database"`
	StoreDir        string        `toml:"store_dir"` // file store when set and mongo_uri is empty
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Render: RenderConfig{
			Formats: []string{"svg"},
			Engine:  "native",
			Scale:   2,
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			Database:        appName,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads the configuration. path overrides the lookup order; pass ""
// to search the default locations.
func Load(path string) (Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	candidate, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := LoadFile(candidate)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads one TOML file on top of the defaults. Keys missing from the
// file keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), fmt.Errorf("config %s: %w", path, err)
		}
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Default(), fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated fields. Render formats and engines are checked
// by the pipeline when they are used.
func (c Config) Validate() error {
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, c.Cache.Backend) {
		return fmt.Errorf("cache.backend must be one of file, redis, none; got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New("cache.redis_addr is required for the redis backend")
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must not be negative")
	}
	return nil
}

// DefaultPath returns where Load looks when no path is given.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the file cache directory: Cache.Dir if set, else the XDG
// cache location (~/.cache/seqflow/).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

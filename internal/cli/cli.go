// Package cli implements the psdatlas command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/psdatlas/pkg/buildinfo"
	"github.com/matzehuels/psdatlas/pkg/cache"
	"github.com/matzehuels/psdatlas/pkg/config"
	"github.com/matzehuels/psdatlas/pkg/jobs"
	"github.com/matzehuels/psdatlas/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "psdatlas"

	// redisPrefix namespaces psdatlas keys in a shared Redis.
	redisPrefix = appName + ":"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by the --config flag. Empty means config.Path().
	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "psdatlas packs layered artwork into sprite atlases",
		Long:         `psdatlas turns a layered document (a layer manifest or a folder of images) into a packed texture atlas plus a compact PSDB binary describing every region.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/psdatlas/config.toml)")

	root.AddCommand(c.packCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.jobsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	c.cfg = &cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner with the configured cache and job store.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	store, err := c.newJobStore(ctx, cfg)
	if err != nil {
		ch.Close()
		return nil, err
	}
	// Artifacts embed the build version, so entries are scoped per build.
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	r.Jobs = store
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}

// newCache picks Redis when an address is configured, the file cache
// otherwise. An unreachable Redis falls back to the file cache.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   redisPrefix,
		})
		if err == nil {
			return rc, nil
		}
		c.Logger.Warn("redis unavailable, using file cache", "addr", cfg.Cache.RedisAddr, "err", err)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// newJobStore opens the configured job history backend.
func (c *CLI) newJobStore(ctx context.Context, cfg config.Config) (jobs.Store, error) {
	switch cfg.Jobs.Backend {
	case config.JobsNone:
		return jobs.NullStore{}, nil
	case config.JobsMongo:
		return jobs.NewMongoStore(ctx, jobs.MongoConfig{
			URI:      cfg.Jobs.MongoURI,
			Database: cfg.Jobs.MongoDatabase,
		})
	default:
		return jobs.NewFileStore(cfg.Jobs.Dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/psdatlas/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ossmap/ossmap/pkg/buildinfo"
	"github.com/ossmap/ossmap/pkg/cache"
	"github.com/ossmap/ossmap/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "ossmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config
}

// New creates a new CLI instance with a default logger and configuration
// loaded from the standard lookup locations.
func New(w io.Writer, level log.Level) *CLI {
	c := &CLI{
		Logger: newLogger(w, level),
	}
	cfg, err := loadConfig("")
	if err != nil {
		c.Logger.Warnf("Ignoring malformed config: %v", err)
		cfg = defaultConfig()
	}
	c.Config = cfg
	return c
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "ossmap maps software-ecosystem dependency networks",
		Long:         `ossmap builds attributed dependency networks from tabular data, computes spatial layouts, compares backbone reductions, and exports interactive visualizations.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Make the CLI logger reachable from any command context
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.metricsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use, backed by the cache
// configured in ossmap.toml.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if scope := c.Config.Cache.Scope; scope != "" {
		keyer = cache.NewScopedKeyer(nil, scope)
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
		})
	case "mongo":
		return cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        c.Config.Cache.MongoURI,
			Database:   c.Config.Cache.MongoDatabase,
			Collection: c.Config.Cache.MongoCollection,
		})
	default:
		dir := c.Config.Cache.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/ossmap/).
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

// applyConfigDefaults copies config-file layout defaults into options that
// the user did not set on the command line.
func (c *CLI) applyConfigDefaults(opts *pipeline.Options) {
	if opts.Algorithm == "" {
		opts.Algorithm = c.Config.Layout.Algorithm
	}
	if opts.Iterations == 0 {
		opts.Iterations = c.Config.Layout.Iterations
	}
	if opts.LayoutSeed == 0 {
		opts.LayoutSeed = c.Config.Layout.Seed
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatHTML}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

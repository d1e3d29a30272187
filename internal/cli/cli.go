// Package cli implements the causeway command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/causeway/pkg/buildinfo"
	"github.com/matzehuels/causeway/pkg/cache"
	"github.com/matzehuels/causeway/pkg/config"
	"github.com/matzehuels/causeway/pkg/identify"
	"github.com/matzehuels/causeway/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "causeway"

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

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Causeway answers causal queries on Bayesian network models",
		Long: `Causeway identifies interventional and counterfactual queries on causal models
with latent variables, and computes their distributions from the observed network.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/causeway/config.toml)")

	root.AddCommand(c.impactCommand())
	root.AddCommand(c.identifyCommand())
	root.AddCommand(c.counterfactualCommand())
	root.AddCommand(c.doorsCommand())
	root.AddCommand(c.dsepCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// loadConfig reads the config file. Its log level applies unless debug
// logging was already requested on the command line.
func (c *CLI) loadConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.Logger.GetLevel() == LogDebug || cfg.Log.Level == "" {
		return nil
	}
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	c.SetLogLevel(level)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A cache backend that
// cannot be reached is logged and replaced by no cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) *pipeline.Runner {
	var store cache.Cache = cache.NewNullCache()
	if !noCache {
		opened, err := cache.Open(ctx, c.cfg.CacheOptions())
		if err != nil {
			c.Logger.Warn("cache unavailable, continuing without it", "backend", c.cfg.Cache.Backend, "err", err)
		} else {
			store = opened
		}
	}
	r := pipeline.NewRunner(store, nil, c.Logger).
		WithInference(identify.Options{Parallel: c.cfg.Inference.Parallel})
	r.TTL = c.cfg.Cache.TTL.Duration
	return r
}

// loadModel reads the model file at path.
func loadModel(ctx context.Context, r *pipeline.Runner, path string) (*pipeline.Model, error) {
	return r.LoadModel(ctx, pipeline.Source{Path: path})
}

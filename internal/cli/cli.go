// Package cli implements the sysresolve command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sysresolve/pkg/buildinfo"
	"github.com/matzehuels/sysresolve/pkg/config"
	"github.com/matzehuels/sysresolve/pkg/engine"
	"github.com/matzehuels/sysresolve/pkg/provenance"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "sysresolve"

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

	// Provenance overrides the RPM-backed index. Nil uses the default.
	Provenance *provenance.Index

	configPath     string
	provenanceFile string
	cfg            *config.Config
	engine         *engine.Engine
}

// New creates a new CLI instance logging to w.
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
		Use:   appName,
		Short: "Resolve artifact coordinates to files installed on this system",
		Long: `sysresolve maps artifact coordinates (group:name[:extension[:classifier]][:version])
to files provided by system packages, following the installed mapping metadata.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.Close()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "configuration file (TOML or YAML)")
	root.PersistentFlags().StringVar(&c.provenanceFile, "provenance-file", "", "read file ownership from \"package|path\" lines instead of the RPM database")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.translateCommand())
	root.AddCommand(c.relativesCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.providesCommand())
	root.AddCommand(c.depmapCommand())
	root.AddCommand(c.bisectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Engine Factory
// =============================================================================

// loadConfig resolves the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Resolve(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		c.SetLogLevel(LogDebug)
	}
	source := cfg.Source()
	if source == "" {
		source = "built-in defaults"
	}
	c.Logger.Debug("loaded configuration", "source", source)
	c.cfg = cfg
	return cfg, nil
}

// loadEngine assembles the resolver once per process.
func (c *CLI) loadEngine(ctx context.Context) (*engine.Engine, error) {
	if c.engine != nil {
		return c.engine, nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	e, err := engine.New(ctx, cfg, engine.Options{Logger: c.Logger, Provenance: c.provenanceIndex()})
	if err != nil {
		return nil, err
	}
	c.engine = e
	return e, nil
}

// provenanceIndex returns the index used for provider lookups: an explicit
// override, then --provenance-file, then the process-wide RPM index.
func (c *CLI) provenanceIndex() *provenance.Index {
	if c.Provenance == nil && c.provenanceFile != "" {
		c.Provenance = provenance.NewIndex(provenance.FileSource{Path: c.provenanceFile},
			provenance.WithLogger(c.Logger))
	}
	if c.Provenance == nil {
		return provenance.Default()
	}
	return c.Provenance
}

// Close releases the engine, if one was built.
func (c *CLI) Close() error {
	if c.engine == nil {
		return nil
	}
	err := c.engine.Close()
	c.engine = nil
	return err
}

// Package cli defines the bidintel command tree: the API server, schema
// migrations, batch data loaders, and account provisioning.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

// RootOptions holds the global flags shared by every subcommand.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCommand builds the root command and mounts all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "bidintel",
		Short:   "Win-probability prediction for public construction tenders",
		Long:    "bidintel serves win-probability predictions for public construction\ntenders from historical award data, and ships the operational tooling\naround it: schema migrations, batch data loaders, and account setup.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath, "config file path")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newLoadTendersCmd(opts),
		newLoadAwardsCmd(opts),
		newCreateUserCmd(opts),
	)

	return cmd
}

// setup loads configuration and builds the logger every subcommand starts
// from.  Environment variables override file values; when the default config
// file is absent the configuration comes from the environment alone.
func setup(opts *RootOptions) (*config.Config, logging.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath == defaultConfigPath {
		if _, statErr := os.Stat(opts.ConfigPath); statErr != nil {
			cfg, err = config.LoadFromEnv()
		} else {
			cfg, err = config.Load(opts.ConfigPath)
		}
	} else {
		cfg, err = config.Load(opts.ConfigPath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	log, err := logging.NewLogger(logging.LogConfig{
		Level:  level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, log, nil
}

// Execute runs the command tree.
func Execute() error {
	return NewRootCommand().Execute()
}

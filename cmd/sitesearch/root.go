package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openviglet/sitesearch/internal/config"
	logpkg "github.com/openviglet/sitesearch/internal/logger"
	"github.com/openviglet/sitesearch/internal/version"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	env        string
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "sitesearch",
		Short: "Site search middleware over Solr or an embedded index",
		Long: `sitesearch compiles site search requests (filters, facets, highlighting,
targeting rules, boosts) into backend queries and serves the results over HTTP.

Configuration is read from config/<env>.yaml; the environment defaults to
SITESEARCH_ENV or "local".`,
		Version:      version.Version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("sitesearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "Configuration environment (local, dev, prod)")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a config file (overrides --env lookup)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newSiteCmd(opts))
	cmd.AddCommand(newIndexCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// load reads the configuration and builds the logger.
func (o *globalOptions) load() (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(o.env)
	}
	if err != nil {
		return config.Config{}, nil, err
	}

	level := cfg.Logging.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	var file *logpkg.FileConfig
	if f := cfg.Logging.File; f.Filename != "" {
		file = &logpkg.FileConfig{
			Filename:   f.Filename,
			MaxSizeMB:  f.MaxSizeMB,
			MaxBackups: f.MaxBackups,
			MaxAgeDays: f.MaxAgeDays,
			Compress:   f.Compress,
		}
	}
	logger, err := logpkg.NewLogger(o.env, level, file)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

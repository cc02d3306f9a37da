package main

import (
	"fmt"

	"avaloniamcp/internal/config"
	"avaloniamcp/internal/logging"
	"avaloniamcp/internal/mcp"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	dataDir    string
	verbose    bool

	cfg    *config.Config
	logger *logging.AppLogger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "avaloniamcp",
		Short:         "AvaloniaUI knowledge base MCP server",
		Long:          "avaloniamcp serves AvaloniaUI controls, XAML patterns, migration notes and guides to AI assistants over the Model Context Protocol.",
		Version:       mcp.ServerVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.logger = logging.GetDefault()
			if opts.verbose {
				opts.logger = logging.NewWriterLogger(cmd.ErrOrStderr(), log.DebugLevel)
			}
			return opts.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "knowledge base directory (overrides config and "+config.DataDirEnv+")")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "write debug logs to stderr")

	cmd.AddCommand(
		newServeCmd(opts),
		newPreloadCmd(opts),
		newResourcesCmd(opts),
		newRenderCmd(opts),
	)
	return cmd
}

func (o *rootOptions) loadConfig() error {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFrom(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if o.dataDir != "" {
		cfg.SetDataDir(o.dataDir)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	o.logger.Debug("Configuration loaded", "dataDir", cfg.DataDir, "maxEntries", cfg.Cache.MaxEntries)
	o.cfg = cfg
	return nil
}

// newServer builds an MCP server around the loaded config
func (o *rootOptions) newServer() *mcp.Server {
	return mcp.NewServer(o.cfg, o.logger)
}

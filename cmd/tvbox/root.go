package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pokerjest/tvboxfeed/internal/config"
	"github.com/pokerjest/tvboxfeed/internal/logging"
	"github.com/pokerjest/tvboxfeed/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configDir string
	debug     bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "tvbox",
		Short:         "Movie, anime, box office and TV rating feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configDir, "config", "", "directory holding config.yaml (default .)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newServeCommand(opts),
		newFetchCommand(opts),
		newWatchCommand(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "tvbox version %s\n", version)
			},
		},
	)
	return cmd
}

// setup loads configuration and builds the registry every command runs on.
func (o *rootOptions) setup() (*config.Config, *service.Registry, *log.Logger, error) {
	cfg, err := config.Load(o.configDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}
	logger := logging.New(cfg.Log)

	reg, err := service.New(cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build services: %w", err)
	}
	return cfg, reg, logger, nil
}

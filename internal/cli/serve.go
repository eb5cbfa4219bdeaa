package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/bubblechart/internal/server"
)

type serveOpts struct {
	addr  string
	watch bool
}

// serveCommand creates the serve command for hosting the chart in the browser.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:               "serve [file]",
		Short:             "Serve the interactive chart over HTTP",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDataFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], cmd.Flags().Changed("watch"), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default "+server.DefaultAddr+")")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "reload the data file when it changes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, watchSet bool, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig(c.configPath, logger)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if watchSet {
		cfg.Server.Watch = opts.watch
	}

	root, err := loadTree(ctx, input)
	if err != nil {
		return err
	}

	sinks, closeSinks, err := buildNotifier(ctx, cfg.Notify, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	srvCfg := server.Config{
		Addr:            cfg.Server.Addr,
		Tree:            root,
		Widget:          cfg.Widget,
		Notifier:        sinks,
		SessionTTL:      cfg.Server.SessionTTL,
		CleanupInterval: cfg.Server.CleanupInterval,
		Logger:          logger,
	}
	if cfg.Server.Watch {
		srvCfg.WatchPath = input
	}

	srv, err := server.New(srvCfg)
	if err != nil {
		return err
	}
	if !cfg.Widget.Interactive {
		printWarning("Chart is not interactive; pointer events will be rejected")
	}
	return srv.Serve(ctx)
}

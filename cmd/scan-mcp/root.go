package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/scan-overlay-mcp/internal/config"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "scan-mcp",
		Short: "Document scanning with recognized-text overlays",
		Long: `scan-mcp recognizes the text of scanned document pages and maps every
recognized line onto the view the page is shown in, as outlined overlay boxes.

It runs as an MCP server over stdin/stdout (serve) or as one-shot commands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("log-level") {
				ll, err := cmd.Flags().GetString("log-level")
				if err != nil {
					return err
				}
				cfg.LogLevel = ll
			}
			level, err := config.ParseLogLevel(cfg.LogLevel)
			if err != nil {
				return err
			}

			// stdout carries MCP traffic and command output
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			a.logger = slog.New(handler)
			slog.SetDefault(a.logger)
			a.cfg = cfg
			return nil
		},
	}

	ll := os.Getenv(config.EnvLogLevel)
	if ll == "" {
		ll = "info"
	}
	root.PersistentFlags().String("log-level", ll, "The logging level (debug, info, warn, error)")
	root.PersistentFlags().String("config", "", "Path to a YAML configuration file")

	root.AddCommand(
		newServeCmd(a),
		newScanCmd(a),
		newMapCmd(a),
		newVersionCmd(),
	)
	return root
}

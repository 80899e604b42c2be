package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/scan-overlay-mcp/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Debug("starting MCP server",
				"version", Version, "build_time", BuildTime, "commit", GitCommit, "engine", a.cfg.Engine)

			srv, err := server.New(server.Options{
				Config:  a.cfg,
				Logger:  a.logger,
				Version: Version,
			})
			if err != nil {
				return err
			}
			defer srv.Close()

			return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sheetcli/internal/app"
	"sheetcli/internal/infrastructure"
)

func newServeCmd(c *cli) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the table session over HTTP",
		Long: `Starts the JSON API: upload a file to POST /api/table, then view, sort,
search, export, mail and clear it. Prometheus metrics are on /metrics when
telemetry metrics are enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tel, err := infrastructure.InitTelemetry(c.cfg.Telemetry, c.logger)
			if err != nil {
				return err
			}

			a, err := app.NewApplication(ctx, c.cfg, tel, c.logger)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "listen port")
	return cmd
}

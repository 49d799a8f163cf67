package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DanielDerefaka/tao-cli/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the conversation over HTTP: POST /sessions/{id}/messages drives a
session, GET /sessions/{id}/events streams its responses and /metrics serves
Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.RunServe(ctx, app, cli.ServeOptions{
			Addr:    cfg.Server.Addr,
			Version: version,
			Ready: func(addr string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Starting taox server on %s (network %s)\n", addr, cfg.Network)
			},
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "localhost:8080", "Address to listen on")
}

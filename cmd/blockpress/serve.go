package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/blockpress"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the blog and admin server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := blockpress.New(cfg)
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- app.Start() }()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}

		app.Log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errc
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

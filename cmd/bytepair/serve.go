package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-bytepair/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Train on the corpus and serve encode/decode over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, _, err := trainFromCorpus(cfg, cmd.InOrStdin())
			if err != nil {
				return err
			}

			srv := server.New(cfg, tok).WithShutdownTimeout(shutdownTimeout)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Graceful shutdown drain period")

	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe a running server's /health endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			addr := cfg.Server.ListenAddr
			if len(addr) > 0 && addr[0] == ':' {
				addr = "127.0.0.1" + addr
			}

			if err := server.ProbeHTTP(addr); err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

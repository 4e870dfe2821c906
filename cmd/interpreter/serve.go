package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/polyglot-labs/interpreter/agent/openai"
	"github.com/polyglot-labs/interpreter/dialogue"
	"github.com/polyglot-labs/interpreter/observability"
	"github.com/polyglot-labs/interpreter/server"
	"github.com/polyglot-labs/interpreter/session"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger := newLogger(verbose)

			client, err := openai.NewClient(&cfg.Agent)
			if err != nil {
				return err
			}

			orchestrator := dialogue.New(
				session.NewStore(),
				client,
				&cfg.Dialogue,
				dialogue.WithObserver(observability.NewSlogObserver(logger)),
			)

			srv := server.New(
				orchestrator,
				&cfg.Server,
				server.WithTranscriber(client),
				server.WithSpeaker(client),
				server.WithLogger(logger),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

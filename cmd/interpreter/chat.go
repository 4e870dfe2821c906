package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/polyglot-labs/interpreter/agent/openai"
	"github.com/polyglot-labs/interpreter/core/protocol"
	"github.com/polyglot-labs/interpreter/dialogue"
	"github.com/polyglot-labs/interpreter/observability"
	"github.com/polyglot-labs/interpreter/session"
)

var (
	targetLabel  = color.New(color.FgCyan, color.Bold)
	userLabel    = color.New(color.FgGreen, color.Bold)
	cautionLabel = color.New(color.FgYellow, color.Bold)
	summaryLabel = color.New(color.FgMagenta, color.Bold)
)

func chatCmd() *cobra.Command {
	var (
		objective      string
		userLanguage   string
		targetLanguage string
		country        string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run one conversation in the terminal",
		Long: "Starts a session for the given objective and relays turns " +
			"interactively. Type a message and press enter; 'q' quits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
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

			sess, err := orchestrator.Create(objective, userLanguage, targetLanguage, country)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			// Opening move: the model speaks first, from the objective alone.
			result, err := orchestrator.Submit(ctx, sess.ID(), "")
			if err != nil {
				return err
			}
			printTurn(result.Turn)

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "q" {
					break
				}

				result, err = orchestrator.Submit(ctx, sess.ID(), line)
				if err != nil {
					return err
				}
				printTurn(result.Turn)

				if result.Status == session.StatusFulfilled && result.Turn.Kind == protocol.KindSummary {
					summary, err := orchestrator.Summarize(ctx, sess.ID())
					if err == nil {
						summaryLabel.Print("recap: ")
						fmt.Println(summary)
					}
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&objective, "objective", "", "conversation objective (required)")
	cmd.Flags().StringVar(&userLanguage, "user-language", "English", "language the user is addressed in")
	cmd.Flags().StringVar(&targetLanguage, "target-language", "", "language the target is addressed in (required)")
	cmd.Flags().StringVar(&country, "country", "", "country for cultural context")
	_ = cmd.MarkFlagRequired("objective")
	_ = cmd.MarkFlagRequired("target-language")

	return cmd
}

func printTurn(t protocol.Turn) {
	label := userLabel
	switch t.Kind {
	case protocol.KindTarget:
		label = targetLabel
	case protocol.KindCaution:
		label = cautionLabel
	case protocol.KindSummary:
		label = summaryLabel
	}
	label.Printf("[to %s] ", t.Recipient())
	fmt.Println(t.Content)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var (
	askLoad   string
	askSave   string
	askDryRun bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message and print the reply",
	Long: `Send a single message and print the reply.

Use --load to continue a saved conversation and --save to write the
conversation (including the new turn) back to a file. --dry-run prints the
request that would be sent and its estimated prompt tokens without calling
the API.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		text := strings.Join(args, " ")
		if strings.TrimSpace(text) == "" {
			return internal.ErrEmptyInput
		}

		app, err := newChatApp()
		if err != nil {
			return err
		}
		if askLoad != "" {
			if _, err := app.load(askLoad); err != nil {
				return err
			}
		}

		renderer := app.renderer(out)

		if askDryRun {
			return printDryRun(cmd, app, text)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		var turn internal.TurnResult
		_ = internal.ShowProgress(ctx, "Thinking...", func() error {
			turn = app.orchestrator.Turn(turnCtx, text)
			return nil
		})
		// the transcript keeps the user message even when the turn fails
		if askSave != "" {
			if err := internal.SaveSnapshotFile(askSave, app.session.ToSnapshot()); err != nil {
				return err
			}
			internal.LogInfo("Saved %d message(s) to %s", app.session.Len(), askSave)
		}
		if !turn.OK {
			if errors.Is(turn.Err, internal.ErrMissingCredential) {
				return fmt.Errorf("%w: pass --api-key, set %s or add it to %s", turn.Err, app.cfg.APIKeyEnv, app.cfg.SecretsFile)
			}
			return turn.Err
		}

		n := app.session.Len()
		renderer.RenderMessage(out, n, n, internal.Message{Role: internal.RoleAssistant, Content: turn.Reply})

		usage := app.session.Usage()
		internal.LogInfo("%s: %d prompt + %d completion tokens this turn, %s total",
			app.session.Config().SelectedModel, turn.Usage.PromptTokens, turn.Usage.CompletionTokens, internal.FormatCost(app.session.Cost()))
		internal.LogDebug("session totals: %d prompt, %d completion", usage.TotalPromptTokens, usage.TotalCompletionTokens)

		return nil
	},
}

func printDryRun(cmd *cobra.Command, app *chatApp, text string) error {
	out := cmd.OutOrStdout()

	request := append(app.orchestrator.BuildRequest(), internal.Message{Role: internal.RoleUser, Content: text})
	tokens, err := internal.NewPromptTokenCounter().CountMessages(request)
	if err != nil {
		return err
	}
	pricing := app.session.Pricing()
	estimate := internal.EstimateCost(internal.UsageCounters{TotalPromptTokens: int64(tokens)}, pricing)

	_, _ = fmt.Fprintf(out, "model: %s\n", pricing.ModelID)
	_, _ = fmt.Fprintf(out, "personality: %s\n", app.session.Config().SelectedPersonality)
	_, _ = fmt.Fprintf(out, "messages: %d\n", len(request))
	_, _ = fmt.Fprintf(out, "estimated prompt tokens: %d (%s before completion)\n", tokens, internal.FormatCost(estimate))
	_, _ = fmt.Fprintln(out)
	for i, m := range request {
		_, _ = fmt.Fprintf(out, "[%d] %s:\n%s\n\n", i+1, m.Role, m.Content)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askLoad, "load", "", "Load a saved conversation first")
	askCmd.Flags().StringVar(&askSave, "save", "", "Save the conversation to this file afterwards")
	askCmd.Flags().BoolVar(&askDryRun, "dry-run", false, "Print the request and token estimate without sending it")
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var (
	chatLoad    string
	chatSaveDir string
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Start an interactive chat session.

Type a message and press enter to send it. Lines starting with "/" are
commands; type /help to list them. Ctrl+C cancels a reply in progress,
/quit or Ctrl+D leaves.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		var extra []internal.CredentialProvider
		if in, ok := cmd.InOrStdin().(*os.File); ok {
			extra = append(extra, &internal.PromptCredential{
				In:     in,
				Out:    cmd.ErrOrStderr(),
				Prompt: "API key (input hidden): ",
			})
		}

		app, err := newChatApp(extra...)
		if err != nil {
			return err
		}

		dispatcher := internal.NewDispatcher(app.orchestrator, nil)
		if chatSaveDir != "" {
			dispatcher.SaveDir = chatSaveDir
		}
		renderer := app.renderer(out)

		if chatLoad != "" {
			report, err := app.load(chatLoad)
			if err != nil {
				return err
			}
			internal.LogInfo("Loaded %d message(s) from %s", report.Messages, chatLoad)
		}

		renderer.RenderControls(out, internal.ControlsFor(app.session))
		if app.session.Len() > 0 {
			_, _ = fmt.Fprintln(out)
			renderer.RenderTranscript(out, app.session.Messages())
		}
		_, _ = fmt.Fprintln(out, hintStyle.Render("Type /help for commands, /quit to leave."))

		return runChatLoop(cmd.Context(), cmd.InOrStdin(), out, app, dispatcher, renderer)
	},
}

func runChatLoop(ctx context.Context, in io.Reader, out io.Writer, app *chatApp, dispatcher *internal.Dispatcher, renderer internal.Renderer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		_, _ = fmt.Fprint(out, promptLabel(app.session))
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()

		res := handleChatLine(ctx, app, dispatcher, line)
		renderDispatch(out, renderer, app.session, res)
		if res.Quit {
			return nil
		}
	}
}

// handleChatLine runs one dispatcher action. Sends resolve the credential
// before the spinner starts so an interactive key prompt stays readable, and
// Ctrl+C cancels only the turn in progress.
func handleChatLine(ctx context.Context, app *chatApp, dispatcher *internal.Dispatcher, line string) internal.DispatchResult {
	command := internal.ParseCommand(line, app.session.AwaitingLoad())
	if command.Action != internal.ActionSend || strings.TrimSpace(line) == "" {
		return dispatcher.Handle(ctx, line)
	}

	app.orchestrator.ResolveCredential()

	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// the spinner follows ctx, not turnCtx, so it always waits for the turn to settle
	var res internal.DispatchResult
	_ = internal.ShowProgress(ctx, "Thinking...", func() error {
		res = dispatcher.Handle(turnCtx, line)
		return nil
	})
	return res
}

func renderDispatch(out io.Writer, renderer internal.Renderer, session *internal.SessionState, res internal.DispatchResult) {
	if res.Turn != nil && res.Turn.OK {
		n := session.Len()
		renderer.RenderMessage(out, n, n, internal.Message{Role: internal.RoleAssistant, Content: res.Turn.Reply})
	}
	for _, st := range res.Statuses {
		renderer.RenderStatus(out, st)
	}
	if res.ShowTranscript {
		renderer.RenderTranscript(out, session.Messages())
	}

	switch {
	case res.Turn != nil && res.Turn.OK,
		res.Command.Action == internal.ActionReset,
		res.Command.Action == internal.ActionLoad && res.ShowTranscript,
		res.Command.Action == internal.ActionPersonality && res.Command.Arg != "",
		res.Command.Action == internal.ActionModel && res.Command.Arg != "":
		renderer.RenderControls(out, internal.ControlsFor(session))
	}
}

func promptLabel(session *internal.SessionState) string {
	if session.AwaitingLoad() {
		return promptStyle.Render("load path> ")
	}
	return promptStyle.Render(session.Config().SelectedPersonality + "> ")
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatLoad, "load", "", "Load a saved conversation before starting")
	chatCmd.Flags().StringVar(&chatSaveDir, "save-dir", "", "Directory for /save without a path (default: current directory)")
}

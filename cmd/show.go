package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var limit int

var (
	savedAtStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			MarginBottom(1)

	remainingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Show a saved conversation",
	Long:  `Display the messages, selections and cost of a saved conversation file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		app, err := newChatApp()
		if err != nil {
			return err
		}
		report, err := app.load(args[0])
		if err != nil {
			return err
		}

		renderer := app.renderer(out)
		renderer.RenderControls(out, internal.ControlsFor(app.session))
		if !report.Timestamp.IsZero() {
			_, _ = fmt.Fprintln(out, savedAtStyle.Render("Saved "+report.Timestamp.Format("2006-01-02 15:04:05")))
		} else {
			_, _ = fmt.Fprintln(out)
		}

		messages := app.session.Messages()
		total := len(messages)
		if total == 0 {
			renderer.RenderTranscript(out, messages)
			return nil
		}

		shown := messages
		if limit > 0 && limit < total {
			shown = messages[:limit]
		}
		for i, msg := range shown {
			renderer.RenderMessage(out, i+1, total, msg)
			_, _ = fmt.Fprintln(out)
		}

		if limit > 0 && limit < total {
			_, _ = fmt.Fprintln(out, remainingStyle.Render(fmt.Sprintf("... (%d more message(s))", total-limit)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
}

package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:       "list [personalities|models]",
	Short:     "List personalities and models",
	Long:      `List the available personalities and models, including any added in the config file.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"personalities", "models"},
	RunE: func(cmd *cobra.Command, args []string) error {
		what := "all"
		if len(args) == 1 {
			what = strings.ToLower(args[0])
		}

		app, err := newChatApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		switch what {
		case "all":
			displayPersonalities(out, app.session)
			_, _ = fmt.Fprintln(out)
			displayModels(out, app.session)
		case "personalities", "personality", "p":
			displayPersonalities(out, app.session)
		case "models", "model", "m":
			displayModels(out, app.session)
		default:
			return fmt.Errorf("unknown catalog %q (use personalities or models)", args[0])
		}
		return nil
	},
}

func displayPersonalities(out io.Writer, session *internal.SessionState) {
	catalog := session.Personalities()
	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🎭 %d personalities", catalog.Len())))
	_, _ = fmt.Fprintln(out)

	current := session.Config().SelectedPersonality
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "\t"+titleStyle.Render("KEY")+"\t"+titleStyle.Render("NAME")+"\t"+titleStyle.Render("STYLE"))
	for _, p := range catalog.All() {
		marker := ""
		if p.Key == current {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, keyStyle.Render(p.Key), p.DisplayName, dimStyle.Render(truncate(p.Instruction, 60)))
	}
	_ = w.Flush()
}

func displayModels(out io.Writer, session *internal.SessionState) {
	table := session.PricingTable()
	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🤖 %d models", table.Len())))
	_, _ = fmt.Fprintln(out)

	current := session.Config().SelectedModel
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, "\t"+titleStyle.Render("MODEL")+"\t"+titleStyle.Render("PROMPT $/1K")+"\t"+titleStyle.Render("COMPLETION $/1K"))
	for _, m := range table.All() {
		marker := ""
		if m.ModelID == current {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\n", marker, keyStyle.Render(m.ModelID), m.PromptRatePer1K, m.CompletionRatePer1K)
	}
	_ = w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	rootCmd.AddCommand(listCmd)
}

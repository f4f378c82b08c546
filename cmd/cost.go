package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

// costCmd represents the cost command
var costCmd = &cobra.Command{
	Use:   "cost <file>",
	Short: "Estimate the cost of a saved conversation",
	Long: `Show the token totals of a saved conversation and what they cost at
the rates of every known model. The conversation's own model is marked.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		app, err := newChatApp()
		if err != nil {
			return err
		}
		if _, err := app.load(args[0]); err != nil {
			return err
		}

		usage := app.session.Usage()
		_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("💰 %s", args[0])))
		_, _ = fmt.Fprintf(out, "Tokens: %d prompt / %d completion • Messages: %d\n\n",
			usage.TotalPromptTokens, usage.TotalCompletionTokens, app.session.Len())

		current := app.session.Config().SelectedModel
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(w, "\tMODEL\tPROMPT $/1K\tCOMPLETION $/1K\tESTIMATED COST")
		for _, m := range app.session.PricingTable().All() {
			marker := ""
			if m.ModelID == current {
				marker = "*"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%s\n",
				marker, m.ModelID, m.PromptRatePer1K, m.CompletionRatePer1K, internal.FormatCost(internal.EstimateCost(usage, m)))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(costCmd)
}

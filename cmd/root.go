package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var (
	verbose         bool
	plain           bool
	configPath      string
	personalityFlag string
	modelFlag       string
	apiKeyFlag      string
	secretsFileFlag string
	noSecrets       bool
	baseURLFlag     string
	version         string = "dev"
	commit          string = "unknown"
	date            string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "persona-chat",
	Short: "Chat with a language model under a selectable personality",
	Long: `A terminal chat front end for hosted language models.

Pick a personality (a system prompt preset) and a model, talk, and keep an
eye on token usage and estimated cost. Conversations can be saved to and
loaded from a portable JSON file.

Features:
  • Interactive chat with slash commands (/personality, /model, /save, /load)
  • Running token totals and cost estimate per model
  • One-shot questions for scripts (ask)
  • Export saved conversations as JSON, YAML, Markdown or JSONL

Quick Start:
  persona-chat chat                          # Start chatting
  persona-chat ask "What is a koan?"         # One question, one answer
  persona-chat list personalities            # See available personalities
  persona-chat show chat.json                # Read a saved conversation

The API key is taken from --api-key, $OPENAI_API_KEY or the secrets file.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&plain, "plain", false, "Print replies as plain text instead of rendered Markdown")
	flags.StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/persona-chat/config.yaml)")
	flags.StringVarP(&personalityFlag, "personality", "p", "", "Personality key to start with")
	flags.StringVarP(&modelFlag, "model", "m", "", "Model id to start with")
	flags.StringVar(&apiKeyFlag, "api-key", "", "API key for this run (overrides environment and secrets file)")
	flags.StringVar(&secretsFileFlag, "secrets-file", "", "Dotenv file holding the API key")
	flags.BoolVar(&noSecrets, "no-secrets", false, "Do not read the secrets file")
	flags.StringVar(&baseURLFlag, "base-url", "", "Override the API base URL (OpenAI-compatible servers)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

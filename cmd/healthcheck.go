package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckPing bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, catalogs, API key and API access",
	Long: `Check the health of persona-chat by verifying:
  • Config file loading
  • Personality and model catalogs
  • API key availability (the key itself is never printed)
  • Provider support
  • With --ping: that the API accepts the key (lists models)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		say := func(a ...interface{}) { _, _ = fmt.Fprintln(out, a...) }

		say(sectionStyle.Render("🔍 PersonaChat Health Check"))
		say()

		// Step 1: config
		say(infoStyle.Render("Step 1: Loading configuration..."))
		path := configPath
		if path == "" {
			path = internal.DefaultConfigPath()
		}
		if _, err := os.Stat(path); err == nil {
			say(successStyle.Render("✅ Config file found"))
		} else {
			say(warningStyle.Render("⚠️  No config file, using defaults"))
		}
		if verbose {
			say(fmt.Sprintf("   Path: %s", path))
		}
		app, err := newChatApp()
		if err != nil {
			say(errorStyle.Render("❌ Failed to load configuration:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		say()

		// Step 2: catalogs
		say(infoStyle.Render("Step 2: Checking catalogs..."))
		say(successStyle.Render(fmt.Sprintf("✅ %d personalities, %d models",
			app.session.Personalities().Len(), app.session.PricingTable().Len())))
		cfg := app.session.Config()
		say(fmt.Sprintf("   Personality: %s", cfg.SelectedPersonality))
		say(fmt.Sprintf("   Model: %s", cfg.SelectedModel))
		say()

		// Step 3: credential
		say(infoStyle.Render("Step 3: Resolving API key..."))
		credential, source, ok := app.orchestrator.ResolveCredential()
		if ok {
			say(successStyle.Render("✅ API key found (" + source + ")"))
		} else {
			say(warningStyle.Render("⚠️  No API key found"))
			say(fmt.Sprintf("   Pass --api-key, set %s or add it to %s", app.cfg.APIKeyEnv, app.cfg.SecretsFile))
		}
		say()

		// Step 4: provider
		say(infoStyle.Render("Step 4: Checking provider..."))
		gateway, supported := app.gateway.(*internal.OpenAIGateway)
		if !supported {
			say(errorStyle.Render(fmt.Sprintf("❌ Unsupported provider %q", app.cfg.Provider)))
			return fmt.Errorf("health check failed: unsupported provider %q", app.cfg.Provider)
		}
		say(successStyle.Render("✅ Provider: " + app.cfg.Provider))
		if verbose && gateway.BaseURL != "" {
			say(fmt.Sprintf("   Base URL: %s", gateway.BaseURL))
		}
		say()

		if !healthcheckPing {
			say(sectionStyle.Render("📊 Summary"))
			say()
			if !ok {
				say(warningStyle.Render("⚠️  Ready for offline use; chatting needs an API key"))
				return nil
			}
			say(successStyle.Render("✅ Health check passed!"))
			return nil
		}

		// Step 5: ping
		say(infoStyle.Render("Step 5: Contacting the API..."))
		if !ok {
			say(errorStyle.Render("❌ Cannot ping without an API key"))
			return fmt.Errorf("health check failed: %w", internal.ErrMissingCredential)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, app.cfg.Timeout)
		defer cancel()

		count, err := gateway.Verify(ctx, credential)
		if err != nil {
			var gwErr *internal.GatewayError
			if errors.As(err, &gwErr) && gwErr.Kind == internal.GatewayAuthError {
				say(errorStyle.Render("❌ The API rejected the key"))
			} else {
				say(errorStyle.Render("❌ API request failed"))
			}
			say("   ", err)
			return fmt.Errorf("health check failed: %w", err)
		}
		say(successStyle.Render(fmt.Sprintf("✅ API reachable, %d model(s) available", count)))
		say()

		say(sectionStyle.Render("📊 Summary"))
		say()
		say(successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckPing, "ping", false, "Also call the API to verify the key")
}

package cmd

import (
	"io"
	"os"

	"github.com/iksnae/persona-chat/internal"
	"golang.org/x/term"
)

// chatApp is the session wiring shared by the commands
type chatApp struct {
	cfg          *internal.Config
	session      *internal.SessionState
	gateway      internal.CompletionGateway
	orchestrator *internal.ChatOrchestrator
}

// loadConfig reads the config file and applies the persistent flags on top
func loadConfig() (*internal.Config, error) {
	path := configPath
	if path == "" {
		path = internal.DefaultConfigPath()
	}
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if personalityFlag != "" {
		cfg.Personality = personalityFlag
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if secretsFileFlag != "" {
		cfg.SecretsFile = secretsFileFlag
	}
	if noSecrets {
		disabled := false
		cfg.UseSecrets = &disabled
	}
	return cfg, nil
}

// newChatApp builds a session, gateway and orchestrator from config and flags.
// extra providers are consulted after the configured ones.
func newChatApp(extra ...internal.CredentialProvider) (*chatApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	session, err := cfg.NewSession()
	if err != nil {
		return nil, err
	}
	session.SetCredential(apiKeyFlag)

	gateway := internal.NewGateway(cfg.GatewayOptions())
	providers := append(cfg.CredentialProviders(), extra...)
	orchestrator := internal.NewChatOrchestrator(session, gateway, providers, cfg.SystemPrompt)

	internal.LogDebug("session %s: personality=%s model=%s provider=%s",
		session.ID, session.Config().SelectedPersonality, session.Config().SelectedModel, cfg.Provider)

	return &chatApp{
		cfg:          cfg,
		session:      session,
		gateway:      gateway,
		orchestrator: orchestrator,
	}, nil
}

// load replaces the session from a snapshot file, logging every repair
func (a *chatApp) load(path string) (internal.LoadReport, error) {
	report, err := internal.LoadSnapshotFile(a.session, path)
	if err != nil {
		return report, err
	}
	for _, w := range report.Warnings {
		internal.LogWarn("%s: %s", path, w)
	}
	return report, nil
}

func (a *chatApp) renderer(w io.Writer) *internal.TerminalRenderer {
	return internal.NewTerminalRenderer(terminalWidth(w), !plain)
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return 80
}

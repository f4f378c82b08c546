package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/persona-chat/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag of cmd and its children to its default so
// tests sharing rootCmd do not see each other's values.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs rootCmd with args in an isolated environment: no config file,
// no secrets file and no API key unless args pass one. stdin is fed from input.
// It returns stdout and the captured log output.
func execute(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	return executeWithEnv(t, input, nil, args...)
}

func executeWithEnv(t *testing.T, input string, env map[string]string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(internal.DefaultAPIKeyEnv, "")
	for k, v := range env {
		t.Setenv(k, v)
	}

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var logs bytes.Buffer
	internal.SetLogOutput(&logs)
	t.Cleanup(func() { internal.SetLogOutput(&bytes.Buffer{}) })

	base := []string{"--config", filepath.Join(t.TempDir(), "config.yaml"), "--no-secrets", "--plain"}
	rootCmd.SetArgs(append(base, args...))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(input))

	err := rootCmd.Execute()
	return stdout.String(), logs.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "version flag",
			args: []string{"--version"},
			want: "dev (commit: unknown",
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: "persona-chat chat",
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("rootCmd.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Errorf("output should contain %q, got:\n%s", tt.want, out)
			}
		})
	}
}

func TestRootCommand_SubcommandsRegistered(t *testing.T) {
	want := []string{"chat", "ask", "show", "export", "cost", "list", "healthcheck"}
	for _, name := range want {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s command not found in root command", name)
		}
	}
}

func TestRootCommand_VerboseFlag(t *testing.T) {
	_, logs, err := execute(t, "", "--verbose", "list", "models")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(logs, "session") {
		t.Errorf("verbose run should log session wiring, got:\n%s", logs)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeTestFile(t, path, "personality: socrates\nmodel: gpt-4o\n")

	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	configPath = path
	modelFlag = "gpt-4o-mini"
	baseURLFlag = "http://localhost:9999/v1"
	noSecrets = true

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Personality != "socrates" {
		t.Errorf("Personality = %q, want socrates", cfg.Personality)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want gpt-4o-mini", cfg.Model)
	}
	if cfg.BaseURL != "http://localhost:9999/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.SecretsEnabled() {
		t.Error("--no-secrets should disable the secrets file")
	}
}

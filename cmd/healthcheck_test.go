package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/persona-chat/internal"
	"github.com/iksnae/persona-chat/testutil"
)

func TestHealthcheckCommand_Offline(t *testing.T) {
	out, _, err := execute(t, "", "healthcheck")
	if err != nil {
		t.Fatalf("healthcheck without a key should pass: %v", err)
	}
	for _, want := range []string{"No config file", "8 personalities, 2 models", "No API key found", "Provider: openai"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestHealthcheckCommand_KeyIsNeverPrinted(t *testing.T) {
	out, _, err := execute(t, "", "healthcheck", "--api-key", "sk-very-secret")
	if err != nil {
		t.Fatalf("healthcheck failed: %v", err)
	}
	if !strings.Contains(out, "API key found") {
		t.Errorf("key source should be reported, got:\n%s", out)
	}
	if strings.Contains(out, "sk-very-secret") {
		t.Error("healthcheck must not print the key")
	}
}

func TestHealthcheckCommand_Ping(t *testing.T) {
	api := testutil.NewMockAPI(t, "")
	api.APIKey = "sk-test"

	out, _, err := execute(t, "", "healthcheck", "--ping", "--api-key", "sk-test", "--base-url", api.BaseURL())
	if err != nil {
		t.Fatalf("healthcheck --ping failed: %v", err)
	}
	if !strings.Contains(out, "2 model(s) available") {
		t.Errorf("output should report the model count, got:\n%s", out)
	}
}

func TestHealthcheckCommand_Failures(t *testing.T) {
	api := testutil.NewMockAPI(t, "")
	api.APIKey = "sk-right"
	unsupported := testutil.WriteConfigFixture(t, t.TempDir(), "provider: carrier-pigeon\n")

	tests := []struct {
		name    string
		args    []string
		wantErr error
		want    string
	}{
		{
			name:    "ping without key",
			args:    []string{"healthcheck", "--ping"},
			wantErr: internal.ErrMissingCredential,
		},
		{
			name: "ping with rejected key",
			args: []string{"healthcheck", "--ping", "--api-key", "sk-wrong", "--base-url", api.BaseURL()},
			want: "The API rejected the key",
		},
		{
			name: "unsupported provider",
			args: []string{"--config", unsupported, "healthcheck"},
			want: "Unsupported provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", tt.args...)
			if err == nil {
				t.Fatal("healthcheck should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Errorf("output should contain %q, got:\n%s", tt.want, out)
			}
		})
	}
}

package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/persona-chat/internal"
	"github.com/iksnae/persona-chat/testutil"
)

func TestAskCommand_DryRun(t *testing.T) {
	out, _, err := execute(t, "", "ask", "--dry-run", "-p", "socrates", "What", "is", "justice?")
	if err != nil {
		t.Fatalf("ask --dry-run failed: %v", err)
	}
	for _, want := range []string{
		"model: gpt-4o-mini",
		"personality: socrates",
		"messages: 2",
		"estimated prompt tokens: ",
		"[2] user:\nWhat is justice?",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestAskCommand_DryRunWithLoad(t *testing.T) {
	path := testutil.WriteSnapshotFixture(t, t.TempDir(), "chat.json")

	out, _, err := execute(t, "", "ask", "--dry-run", "--load", path, "go on")
	if err != nil {
		t.Fatalf("ask --dry-run failed: %v", err)
	}
	if !strings.Contains(out, "messages: 5") {
		t.Errorf("dry run should include the loaded transcript, got:\n%s", out)
	}
}

func TestAskCommand_TurnAndSave(t *testing.T) {
	api := testutil.NewMockAPI(t, "A koan is a riddle.")
	api.PromptTokens, api.CompletionTokens = 40, 8
	path := filepath.Join(t.TempDir(), "out", "koan.json")

	out, _, err := execute(t, "", "ask", "--api-key", "sk-test", "--base-url", api.BaseURL(), "--save", path, "What is a koan?")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !strings.Contains(out, "A koan is a riddle.") {
		t.Errorf("reply missing from output:\n%s", out)
	}

	snap, _, err := internal.ReadSnapshotFile(path, internal.ConversationSnapshot{})
	if err != nil {
		t.Fatalf("saved file does not load: %v", err)
	}
	if len(snap.Messages) != 2 {
		t.Errorf("saved %d messages, want 2", len(snap.Messages))
	}
	if snap.TotalPromptTokens != 40 || snap.TotalCompletionTokens != 8 {
		t.Errorf("saved usage = %d/%d, want 40/8", snap.TotalPromptTokens, snap.TotalCompletionTokens)
	}
	if snap.Personality != "zen-master" {
		t.Errorf("saved personality = %q, want zen-master", snap.Personality)
	}
}

func TestAskCommand_KeyFromEnvironment(t *testing.T) {
	api := testutil.NewMockAPI(t, "ok")
	api.APIKey = "sk-env"

	_, _, err := executeWithEnv(t, "", map[string]string{internal.DefaultAPIKeyEnv: "sk-env"},
		"ask", "--base-url", api.BaseURL(), "hi")
	if err != nil {
		t.Fatalf("ask with the key in the environment failed: %v", err)
	}
}

func TestAskCommand_Errors(t *testing.T) {
	api := testutil.NewMockAPI(t, "never")
	api.APIKey = "sk-right"

	tests := []struct {
		name    string
		args    []string
		wantErr error
		want    string
	}{
		{
			name:    "missing credential",
			args:    []string{"ask", "--base-url", api.BaseURL(), "hi"},
			wantErr: internal.ErrMissingCredential,
			want:    "pass --api-key",
		},
		{
			name:    "blank message",
			args:    []string{"ask", "   "},
			wantErr: internal.ErrEmptyInput,
		},
		{
			name: "rejected key",
			args: []string{"ask", "--api-key", "sk-wrong", "--base-url", api.BaseURL(), "hi"},
			want: "auth",
		},
		{
			name: "missing load file",
			args: []string{"ask", "--load", filepath.Join(t.TempDir(), "missing.json"), "hi"},
			want: "missing.json",
		},
		{
			name: "no message",
			args: []string{"ask"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			if err == nil {
				t.Fatal("ask should fail")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err.Error(), tt.want)
			}
		})
	}
	if n := len(api.Requests()); n != 0 {
		t.Errorf("rejected requests should not be recorded, got %d", n)
	}
}

func TestAskCommand_FailedTurnStillSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")

	_, _, err := execute(t, "", "ask", "--save", path, "Are you there?")
	if !errors.Is(err, internal.ErrMissingCredential) {
		t.Fatalf("error = %v, want %v", err, internal.ErrMissingCredential)
	}

	snap, _, err := internal.ReadSnapshotFile(path, internal.ConversationSnapshot{})
	if err != nil {
		t.Fatalf("failed turn should still be saved: %v", err)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Content != "Are you there?" {
		t.Errorf("saved messages = %+v, want the user message only", snap.Messages)
	}
	if snap.TotalPromptTokens != 0 || snap.TotalCompletionTokens != 0 {
		t.Errorf("saved usage = %d/%d, want 0/0", snap.TotalPromptTokens, snap.TotalCompletionTokens)
	}
}

package testutil

import (
	"testing"
)

// SnapshotJSON is a saved conversation in the canonical format
const SnapshotJSON = `{
  "messages": [
    {"role": "user", "content": "What is virtue?"},
    {"role": "assistant", "content": "What do **you** think it is?"},
    {"role": "user", "content": "Knowing what is good."}
  ],
  "total_prompt_tokens": 2000,
  "total_completion_tokens": 1000,
  "personality": "socrates",
  "model": "gpt-4o-mini",
  "ts": 1700000000
}
`

// BareArraySnapshotJSON is the legacy form: only the message list
const BareArraySnapshotJSON = `[
  {"role": "user", "content": "hi"},
  {"role": "assistant", "content": "hello"}
]
`

// WriteSnapshotFixture writes SnapshotJSON into dir as name
func WriteSnapshotFixture(t *testing.T, dir, name string) string {
	t.Helper()
	return WriteFile(t, dir, name, SnapshotJSON)
}

// WriteConfigFixture writes a config.yaml into dir
func WriteConfigFixture(t *testing.T, dir, content string) string {
	t.Helper()
	return WriteFile(t, dir, "config.yaml", content)
}

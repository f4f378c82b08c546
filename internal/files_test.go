package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSnapshotName(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	assert.Equal(t, "persona-chat_1700000000.json", DefaultSnapshotName(ts))
}

func TestSaveAndLoadSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "chat.json")
	require.NoError(t, SaveSnapshotFile(path, CreateTestSnapshot()))

	s := CreateTestSession()
	report, err := LoadSnapshotFile(s, path)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Messages)
	assert.Equal(t, int64(1700000000), report.Timestamp.Unix())
	assert.Equal(t, CreateTestSnapshot().Messages, s.Messages())
	assert.Equal(t, "socrates", s.Config().SelectedPersonality)
	assert.Equal(t, "gpt-4o", s.Config().SelectedModel)
}

func TestLoadSnapshotFile_Missing(t *testing.T) {
	s := CreateTestSession()
	s.AppendUserMessage("keep")

	_, err := LoadSnapshotFile(s, filepath.Join(t.TempDir(), "missing.json"))

	var fileErr *FileError
	require.True(t, errors.As(err, &fileErr))
	assert.Equal(t, "read", fileErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Len(t, s.Messages(), 1)
}

func TestReadSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"role":"user","content":"only"}]`), 0644))

	base := ConversationSnapshot{Personality: "kid-mode", Model: "gpt-4o-mini"}
	snap, warnings, err := ReadSnapshotFile(path, base)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "kid-mode", snap.Personality)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "only"}}, snap.Messages)
}

package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultSnapshotName returns the file name used when saving without a path
func DefaultSnapshotName(t time.Time) string {
	return fmt.Sprintf("persona-chat_%d.json", t.Unix())
}

// SaveSnapshotFile writes snap as JSON to path, creating parent directories
func SaveSnapshotFile(path string, snap ConversationSnapshot) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &FileError{Path: dir, Op: "mkdir", Err: err}
		}
	}
	data, err := MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &FileError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// ReadSnapshotFile reads and decodes a snapshot file on top of base
func ReadSnapshotFile(path string, base ConversationSnapshot) (ConversationSnapshot, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, nil, &FileError{Path: path, Op: "read", Err: err}
	}
	return DecodeSnapshot(data, base, path)
}

// LoadSnapshotFile reads path and replaces the session from it.
// The session is unchanged when reading or decoding fails.
func LoadSnapshotFile(session *SessionState, path string) (LoadReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadReport{}, &FileError{Path: path, Op: "read", Err: err}
	}
	return session.LoadSnapshotJSON(data, path)
}

package export

import (
	"io"

	"github.com/iksnae/persona-chat/internal"
)

// JSONExporter writes the snapshot document itself, so the output can be loaded back
type JSONExporter struct{}

// Export exports a snapshot to JSON format
func (e *JSONExporter) Export(snap *internal.ConversationSnapshot, w io.Writer) error {
	return internal.EncodeSnapshot(w, *snap)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

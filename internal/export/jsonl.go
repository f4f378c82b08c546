package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/persona-chat/internal"
)

// JSONLExporter exports snapshots in JSONL format (one message per line)
type JSONLExporter struct{}

type jsonlLine struct {
	Index   int    `json:"index"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Export exports a snapshot to JSONL format
func (e *JSONLExporter) Export(snap *internal.ConversationSnapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for i, msg := range snap.Messages {
		line := jsonlLine{Index: i + 1, Role: string(msg.Role), Content: msg.Content}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message %d: %w", i+1, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/persona-chat/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(snap *internal.ConversationSnapshot, w io.Writer) error
	Extension() string
}

// Formats lists the accepted format names
var Formats = []string{"json", "yaml", "md", "jsonl"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/persona-chat/internal"
)

// MarkdownExporter exports snapshots in Markdown format
type MarkdownExporter struct{}

// Export exports a snapshot to Markdown format
func (e *MarkdownExporter) Export(snap *internal.ConversationSnapshot, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# PersonaChat conversation\n\n")

	if snap.Timestamp > 0 {
		_, _ = fmt.Fprintf(w, "**Saved:** %s  \n", time.Unix(snap.Timestamp, 0).UTC().Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Personality:** %s  \n", snap.Personality)
	_, _ = fmt.Fprintf(w, "**Model:** %s  \n", snap.Model)
	_, _ = fmt.Fprintf(w, "**Tokens:** %d prompt / %d completion  \n", snap.TotalPromptTokens, snap.TotalCompletionTokens)
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(snap.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range snap.Messages {
		content := escapeMarkdown(msg.Content)

		_, _ = fmt.Fprintf(w, "**%s:**\n\n%s\n\n", msg.Role, content)

		if i < len(snap.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

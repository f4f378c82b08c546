package internal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Renderer is a read-only projection of a session
type Renderer interface {
	RenderTranscript(w io.Writer, messages []Message)
	RenderMessage(w io.Writer, index, total int, msg Message)
	RenderControls(w io.Writer, view ControlsView)
	RenderStatus(w io.Writer, status Status)
}

// ControlsView is the data shown in the header/status bar
type ControlsView struct {
	Personality  Personality
	Model        string
	Usage        UsageCounters
	Cost         float64
	Messages     int
	AwaitingLoad bool
}

// ControlsFor projects a session into a ControlsView
func ControlsFor(s *SessionState) ControlsView {
	return ControlsView{
		Personality:  s.Personality(),
		Model:        s.Config().SelectedModel,
		Usage:        s.Usage(),
		Cost:         s.Cost(),
		Messages:     s.Len(),
		AwaitingLoad: s.AwaitingLoad(),
	}
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	costPillStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2)

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// TerminalRenderer renders with lipgloss; assistant replies go through glamour
// when Markdown is on.
type TerminalRenderer struct {
	Width    int
	Markdown bool

	md *glamour.TermRenderer
}

// NewTerminalRenderer creates a renderer. If the markdown renderer cannot be
// built, replies fall back to wrapped plain text.
func NewTerminalRenderer(width int, markdown bool) *TerminalRenderer {
	if width <= 0 {
		width = 80
	}
	r := &TerminalRenderer{Width: width, Markdown: markdown}
	if markdown {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			LogDebug("markdown renderer unavailable: %v", err)
		} else {
			r.md = md
		}
	}
	return r
}

// RenderTranscript renders every message
func (r *TerminalRenderer) RenderTranscript(w io.Writer, messages []Message) {
	if len(messages) == 0 {
		_, _ = fmt.Fprintln(w, metaStyle.Render("(no messages yet)"))
		return
	}
	for i, msg := range messages {
		r.RenderMessage(w, i+1, len(messages), msg)
	}
}

// RenderMessage renders one message with its position
func (r *TerminalRenderer) RenderMessage(w io.Writer, index, total int, msg Message) {
	var label string
	var style lipgloss.Style
	switch msg.Role {
	case RoleUser:
		style, label = userMessageStyle, "👤 You"
	case RoleAssistant:
		style, label = assistantMessageStyle, "🤖 Assistant"
	default:
		style, label = metaStyle, "🔧 "+string(msg.Role)
	}

	header := style.Render(label)
	if total > 0 {
		header += " " + indexStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	}
	_, _ = fmt.Fprintln(w, header)
	_, _ = fmt.Fprintln(w, r.renderContent(msg))
}

func (r *TerminalRenderer) renderContent(msg Message) string {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)")
	}
	if msg.Role == RoleAssistant && r.md != nil {
		if out, err := r.renderMarkdown(content); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return messageContentStyle.Render(WrapText(content, r.Width))
}

func (r *TerminalRenderer) renderMarkdown(content string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("markdown render panic: %v", rec)
		}
	}()
	return r.md.Render(content)
}

// RenderControls renders the header line with selections and cost
func (r *TerminalRenderer) RenderControls(w io.Writer, v ControlsView) {
	title := headerStyle.Render("🧠 PersonaChat")
	pill := costPillStyle.Render("est. cost " + FormatCost(v.Cost))
	_, _ = fmt.Fprintln(w, title+" "+pill)

	parts := []string{
		"Personality: " + v.Personality.DisplayName,
		"Model: " + v.Model,
		fmt.Sprintf("Tokens: %d in / %d out", v.Usage.TotalPromptTokens, v.Usage.TotalCompletionTokens),
		fmt.Sprintf("Messages: %d", v.Messages),
	}
	if v.AwaitingLoad {
		parts = append(parts, "waiting for a file to load")
	}
	_, _ = fmt.Fprintln(w, metaStyle.Render(strings.Join(parts, " • ")))
}

// RenderStatus renders one feedback line
func (r *TerminalRenderer) RenderStatus(w io.Writer, s Status) {
	switch s.Level {
	case StatusSuccess:
		_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render("✓"), s.Text)
	case StatusWarning:
		_, _ = fmt.Fprintf(w, "%s %s\n", warningStyle.Render("⚠"), s.Text)
	case StatusError:
		_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render("✗"), s.Text)
	default:
		_, _ = fmt.Fprintln(w, metaStyle.Render(s.Text))
	}
}

// WrapText wraps long lines at word boundaries
func WrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else if currentLine == "" {
				currentLine = word
			} else {
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

var _ Renderer = (*TerminalRenderer)(nil)

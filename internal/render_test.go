package internal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalRenderer_Transcript(t *testing.T) {
	r := NewTerminalRenderer(60, false)

	var empty bytes.Buffer
	r.RenderTranscript(&empty, nil)
	assert.Contains(t, empty.String(), "(no messages yet)")

	var buf bytes.Buffer
	r.RenderTranscript(&buf, []Message{
		{Role: RoleUser, Content: "What is the sound of one hand clapping?"},
		{Role: RoleAssistant, Content: "Listen to the river."},
		{Role: RoleUser, Content: "   "},
	})
	out := buf.String()

	assert.Contains(t, out, "You")
	assert.Contains(t, out, "Assistant")
	assert.Contains(t, out, "[1/3]")
	assert.Contains(t, out, "[3/3]")
	assert.Contains(t, out, "Listen to the river.")
	assert.Contains(t, out, "(empty message)")
}

func TestTerminalRenderer_MarkdownReply(t *testing.T) {
	r := NewTerminalRenderer(60, true)

	var buf bytes.Buffer
	r.RenderMessage(&buf, 1, 1, Message{Role: RoleAssistant, Content: "# Plan\n\n- breathe in\n- breathe out"})

	assert.Contains(t, buf.String(), "breathe in")
	assert.Contains(t, buf.String(), "Plan")
}

func TestTerminalRenderer_Controls(t *testing.T) {
	s := CreateTestSession()
	_ = s.SelectPersonality("socrates")
	_ = s.AddUsage(2000, 1000)
	s.AppendUserMessage("hi")
	s.BeginLoad()

	var buf bytes.Buffer
	NewTerminalRenderer(80, false).RenderControls(&buf, ControlsFor(s))
	out := buf.String()

	assert.Contains(t, out, "PersonaChat")
	assert.Contains(t, out, "$0.9000")
	assert.Contains(t, out, s.Personality().DisplayName)
	assert.Contains(t, out, "gpt-4o-mini")
	assert.Contains(t, out, "2000 in / 1000 out")
	assert.Contains(t, out, "Messages: 1")
	assert.Contains(t, out, "waiting for a file to load")
}

func TestTerminalRenderer_Status(t *testing.T) {
	r := NewTerminalRenderer(80, false)
	tests := []struct {
		level StatusLevel
		mark  string
	}{
		{StatusSuccess, "✓"},
		{StatusWarning, "⚠"},
		{StatusError, "✗"},
		{StatusInfo, ""},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		r.RenderStatus(&buf, Status{Level: tt.level, Text: "done"})
		assert.Contains(t, buf.String(), "done")
		assert.Contains(t, buf.String(), tt.mark)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{name: "short line", text: "hello", width: 10, want: "hello"},
		{name: "wraps words", text: "one two three four", width: 9, want: "one two\nthree\nfour"},
		{name: "keeps newlines", text: "a\nb", width: 5, want: "a\nb"},
		{name: "long word", text: "supercalifragilistic x", width: 5, want: "supercalifragilistic\nx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapText(tt.text, tt.width)
			assert.Equal(t, tt.want, got)
			for _, line := range strings.Split(got, "\n") {
				if !strings.Contains(line, " ") {
					continue
				}
				assert.LessOrEqual(t, len(line), tt.width)
			}
		})
	}
}

package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// ConversationSnapshot is the save/load unit for a session
type ConversationSnapshot struct {
	Messages              []Message `json:"messages" yaml:"messages"`
	TotalPromptTokens     int64     `json:"total_prompt_tokens" yaml:"total_prompt_tokens"`
	TotalCompletionTokens int64     `json:"total_completion_tokens" yaml:"total_completion_tokens"`
	Personality           string    `json:"personality" yaml:"personality"`
	Model                 string    `json:"model" yaml:"model"`
	Timestamp             int64     `json:"ts" yaml:"ts"`
}

// Usage returns the snapshot's counters
func (c ConversationSnapshot) Usage() UsageCounters {
	return UsageCounters{
		TotalPromptTokens:     c.TotalPromptTokens,
		TotalCompletionTokens: c.TotalCompletionTokens,
	}
}

// EncodeSnapshot writes snap as indented UTF-8 JSON
func EncodeSnapshot(w io.Writer, snap ConversationSnapshot) error {
	if snap.Messages == nil {
		snap.Messages = []Message{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(snap)
}

// MarshalSnapshot is EncodeSnapshot into a byte slice
func MarshalSnapshot(snap ConversationSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses a snapshot document leniently. Fields absent from the
// document (or of the wrong JSON type) keep their value from base. A bare
// array is taken as the message list. Malformed JSON and documents that are
// neither an array nor an object with "messages" fail with a *SnapshotError.
func DecodeSnapshot(data []byte, base ConversationSnapshot, source string) (ConversationSnapshot, []string, error) {
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return base, nil, &SnapshotError{Source: source, Reason: "malformed JSON", Err: err}
	}

	out := base
	out.Messages = append([]Message(nil), base.Messages...)
	var warnings []string

	switch probe.(type) {
	case []interface{}:
		msgs, w, err := decodeMessages(data, source)
		if err != nil {
			return base, nil, err
		}
		out.Messages = msgs
		warnings = append(warnings, w...)
		return out, warnings, nil

	case map[string]interface{}:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return base, nil, &SnapshotError{Source: source, Reason: "malformed JSON", Err: err}
		}
		rawMessages, ok := fields["messages"]
		if !ok {
			return base, nil, &SnapshotError{Source: source, Reason: `object has no "messages" field`}
		}
		msgs, w, err := decodeMessages(rawMessages, source)
		if err != nil {
			return base, nil, err
		}
		out.Messages = msgs
		warnings = append(warnings, w...)

		if raw, ok := fields["total_prompt_tokens"]; ok {
			if n, ok := decodeInt(raw); ok {
				out.TotalPromptTokens = n
			} else {
				warnings = append(warnings, "total_prompt_tokens is not an integer, keeping current value")
			}
		}
		if raw, ok := fields["total_completion_tokens"]; ok {
			if n, ok := decodeInt(raw); ok {
				out.TotalCompletionTokens = n
			} else {
				warnings = append(warnings, "total_completion_tokens is not an integer, keeping current value")
			}
		}
		if raw, ok := fields["personality"]; ok {
			if s, ok := decodeString(raw); ok {
				out.Personality = s
			} else {
				warnings = append(warnings, "personality is not a string, keeping current value")
			}
		}
		if raw, ok := fields["model"]; ok {
			if s, ok := decodeString(raw); ok {
				out.Model = s
			} else {
				warnings = append(warnings, "model is not a string, keeping current value")
			}
		}
		if raw, ok := fields["ts"]; ok {
			if n, ok := decodeInt(raw); ok {
				out.Timestamp = n
			}
		}
		return out, warnings, nil

	default:
		return base, nil, &SnapshotError{Source: source, Reason: "unexpected document shape (want an object with \"messages\" or an array)"}
	}
}

func decodeMessages(raw json.RawMessage, source string) ([]Message, []string, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []Message{}, nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, nil, &SnapshotError{Source: source, Reason: `"messages" must be an array`, Err: err}
	}

	msgs := make([]Message, 0, len(items))
	var warnings []string
	for i, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			warnings = append(warnings, fmt.Sprintf("message %d is not an object, skipped", i))
			continue
		}
		role, ok := decodeString(obj["role"])
		if !ok {
			warnings = append(warnings, fmt.Sprintf("message %d has no role, skipped", i))
			continue
		}
		content := ""
		if rawContent, present := obj["content"]; present && !isNull(rawContent) {
			content, ok = decodeString(rawContent)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("message %d content is not text, skipped", i))
				continue
			}
		}
		msgs = append(msgs, Message{Role: Role(role), Content: content})
	}
	return msgs, warnings, nil
}

func decodeString(raw json.RawMessage) (string, bool) {
	if raw == nil {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeInt(raw json.RawMessage) (int64, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		return n, true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single transcript entry
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// UsageCounters holds cumulative token usage for the session
type UsageCounters struct {
	TotalPromptTokens     int64 `json:"total_prompt_tokens" yaml:"total_prompt_tokens"`
	TotalCompletionTokens int64 `json:"total_completion_tokens" yaml:"total_completion_tokens"`
}

// SessionConfig holds the user's selections for the session
type SessionConfig struct {
	SelectedPersonality string
	SelectedModel       string
	APICredential       string // empty means "not set"
}

// LoadReport describes the outcome of a snapshot load
type LoadReport struct {
	Messages  int
	Timestamp time.Time
	Warnings  []string
}

// SessionState is the owned aggregate for one chat session.
// It is not safe for concurrent mutation; the orchestrator serializes turns.
type SessionState struct {
	ID string

	messages     []Message
	usage        UsageCounters
	config       SessionConfig
	awaitingLoad bool

	personalities *PersonalityCatalog
	pricing       *PricingTable
	now           func() time.Time
}

// NewSessionState creates an empty session selecting the catalog defaults
func NewSessionState(personalities *PersonalityCatalog, pricing *PricingTable) *SessionState {
	return &SessionState{
		ID:       uuid.NewString(),
		messages: make([]Message, 0),
		config: SessionConfig{
			SelectedPersonality: personalities.Default().Key,
			SelectedModel:       pricing.Default().ModelID,
		},
		personalities: personalities,
		pricing:       pricing,
		now:           time.Now,
	}
}

// Messages returns a copy of the transcript
func (s *SessionState) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of transcript messages
func (s *SessionState) Len() int { return len(s.messages) }

func (s *SessionState) Usage() UsageCounters { return s.usage }

func (s *SessionState) Config() SessionConfig { return s.config }

func (s *SessionState) AwaitingLoad() bool { return s.awaitingLoad }

func (s *SessionState) Personalities() *PersonalityCatalog { return s.personalities }

func (s *SessionState) PricingTable() *PricingTable { return s.pricing }

// Personality returns the selected personality
func (s *SessionState) Personality() Personality {
	p, _ := s.personalities.Get(s.config.SelectedPersonality)
	return p
}

// Pricing returns the selected model's pricing
func (s *SessionState) Pricing() ModelPricing {
	m, _ := s.pricing.Get(s.config.SelectedModel)
	return m
}

// Cost estimates the session cost at the selected model's rates
func (s *SessionState) Cost() float64 {
	return EstimateCost(s.usage, s.Pricing())
}

// AppendUserMessage appends a user message; any text is accepted
func (s *SessionState) AppendUserMessage(text string) {
	s.messages = append(s.messages, Message{Role: RoleUser, Content: text})
}

// AppendAssistantMessage appends an assistant message
func (s *SessionState) AppendAssistantMessage(text string) {
	s.messages = append(s.messages, Message{Role: RoleAssistant, Content: text})
}

// AddUsage adds token counts to the running totals
func (s *SessionState) AddUsage(promptTokens, completionTokens int64) error {
	if promptTokens < 0 || completionTokens < 0 {
		return &UsageError{Prompt: promptTokens, Completion: completionTokens}
	}
	s.usage.TotalPromptTokens += promptTokens
	s.usage.TotalCompletionTokens += completionTokens
	return nil
}

// Reset clears the transcript and usage; configuration survives
func (s *SessionState) Reset() {
	s.messages = make([]Message, 0)
	s.usage = UsageCounters{}
	s.awaitingLoad = false
}

// SelectPersonality switches the personality; unknown keys leave state unchanged
func (s *SessionState) SelectPersonality(key string) error {
	if _, err := s.personalities.Lookup(key); err != nil {
		return err
	}
	s.config.SelectedPersonality = key
	return nil
}

// SelectModel switches the model; unknown ids leave state unchanged
func (s *SessionState) SelectModel(id string) error {
	if _, err := s.pricing.Lookup(id); err != nil {
		return err
	}
	s.config.SelectedModel = id
	return nil
}

// SetCredential sets the explicit credential field; blank clears it
func (s *SessionState) SetCredential(credential string) {
	s.config.APICredential = strings.TrimSpace(credential)
}

// BeginLoad marks the session as waiting for a snapshot to load
func (s *SessionState) BeginLoad() { s.awaitingLoad = true }

// CancelLoad clears the pending load flag
func (s *SessionState) CancelLoad() { s.awaitingLoad = false }

// ToSnapshot captures the session for export
func (s *SessionState) ToSnapshot() ConversationSnapshot {
	return ConversationSnapshot{
		Messages:              s.Messages(),
		TotalPromptTokens:     s.usage.TotalPromptTokens,
		TotalCompletionTokens: s.usage.TotalCompletionTokens,
		Personality:           s.config.SelectedPersonality,
		Model:                 s.config.SelectedModel,
		Timestamp:             s.now().Unix(),
	}
}

// ReplaceFromSnapshot overwrites transcript, usage and selections from snap.
// Negative counters are clamped to zero, unknown catalog keys fall back to the
// catalog default and messages with unknown roles are dropped; each repair is
// reported as a warning. The credential is not part of a snapshot and is kept.
func (s *SessionState) ReplaceFromSnapshot(snap ConversationSnapshot) LoadReport {
	var report LoadReport

	messages := make([]Message, 0, len(snap.Messages))
	for i, m := range snap.Messages {
		if !m.Role.Valid() {
			report.Warnings = append(report.Warnings, fmt.Sprintf("message %d: unknown role %q, skipped", i, m.Role))
			continue
		}
		messages = append(messages, m)
	}

	prompt, completion := snap.TotalPromptTokens, snap.TotalCompletionTokens
	if prompt < 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("total_prompt_tokens %d is negative, clamped to 0", prompt))
		prompt = 0
	}
	if completion < 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("total_completion_tokens %d is negative, clamped to 0", completion))
		completion = 0
	}

	personality := snap.Personality
	if _, ok := s.personalities.Get(personality); !ok {
		fallback := s.personalities.Default().Key
		report.Warnings = append(report.Warnings, fmt.Sprintf("unknown personality %q, using %q", personality, fallback))
		personality = fallback
	}
	model := snap.Model
	if _, ok := s.pricing.Get(model); !ok {
		fallback := s.pricing.Default().ModelID
		report.Warnings = append(report.Warnings, fmt.Sprintf("unknown model %q, using %q", model, fallback))
		model = fallback
	}

	s.messages = messages
	s.usage = UsageCounters{TotalPromptTokens: prompt, TotalCompletionTokens: completion}
	s.config.SelectedPersonality = personality
	s.config.SelectedModel = model
	s.awaitingLoad = false

	report.Messages = len(messages)
	if snap.Timestamp > 0 {
		report.Timestamp = time.Unix(snap.Timestamp, 0)
	}
	return report
}

// LoadSnapshotJSON decodes a snapshot document using the tolerant rules of
// DecodeSnapshot and applies it. On error the session is left unchanged.
func (s *SessionState) LoadSnapshotJSON(data []byte, source string) (LoadReport, error) {
	snap, warnings, err := DecodeSnapshot(data, s.ToSnapshot(), source)
	if err != nil {
		return LoadReport{}, err
	}
	report := s.ReplaceFromSnapshot(snap)
	report.Warnings = append(warnings, report.Warnings...)
	return report, nil
}

package internal

import (
	"context"
	"sync"
)

// FakeGateway is a scripted CompletionGateway for tests
type FakeGateway struct {
	mu sync.Mutex

	Reply string
	Usage TokenUsage
	Err   error

	// Block, when set, is waited on before answering
	Block chan struct{}

	Calls []CompletionRequest
}

// Complete records the request and returns the scripted result
func (g *FakeGateway) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	g.mu.Lock()
	g.Calls = append(g.Calls, req)
	block := g.Block
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return Completion{}, &GatewayError{Kind: GatewayNetworkError, Model: req.Model, Err: ctx.Err()}
		}
	}
	if g.Err != nil {
		return Completion{}, g.Err
	}
	return Completion{Content: g.Reply, Usage: g.Usage}, nil
}

// CallCount returns the number of Complete calls so far
func (g *FakeGateway) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Calls)
}

// CreateTestSession creates a session over the built-in catalogs
func CreateTestSession() *SessionState {
	personalities, err := NewPersonalityCatalog(BuiltinPersonalities)
	if err != nil {
		panic(err)
	}
	pricing, err := NewPricingTable(BuiltinPricing)
	if err != nil {
		panic(err)
	}
	return NewSessionState(personalities, pricing)
}

// CreateTestSessionWithMessages creates a session holding messages
func CreateTestSessionWithMessages(messages []Message) *SessionState {
	s := CreateTestSession()
	for _, m := range messages {
		switch m.Role {
		case RoleUser:
			s.AppendUserMessage(m.Content)
		case RoleAssistant:
			s.AppendAssistantMessage(m.Content)
		default:
			s.messages = append(s.messages, m)
		}
	}
	return s
}

// CreateTestSnapshot returns a small two-message snapshot
func CreateTestSnapshot() ConversationSnapshot {
	return ConversationSnapshot{
		Messages: []Message{
			{Role: RoleUser, Content: "Hello, how are you?"},
			{Role: RoleAssistant, Content: "I'm doing well, thank you!"},
		},
		TotalPromptTokens:     120,
		TotalCompletionTokens: 45,
		Personality:           "socrates",
		Model:                 "gpt-4o",
		Timestamp:             1700000000,
	}
}

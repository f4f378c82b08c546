package internal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
)

// TurnState is a step of the turn protocol
type TurnState int

const (
	StateIdle TurnState = iota
	StateAwaitingCredential
	StateBuildingRequest
	StateCallingGateway
	StateSettled
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingCredential:
		return "awaiting-credential"
	case StateBuildingRequest:
		return "building-request"
	case StateCallingGateway:
		return "calling-gateway"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// TurnResult is the settled outcome of one turn
type TurnResult struct {
	OK    bool
	Reply string
	Usage TokenUsage
	Err   error
}

// Notice renders the failure reason for display
func (r TurnResult) Notice() string {
	if r.OK || r.Err == nil {
		return ""
	}
	if errors.Is(r.Err, ErrMissingCredential) {
		return "No API key: pass --api-key, set " + DefaultAPIKeyEnv + ", or add it to the secrets file."
	}
	return "Error: " + r.Err.Error()
}

// ChatOrchestrator drives turns against one session
type ChatOrchestrator struct {
	session     *SessionState
	gateway     CompletionGateway
	credentials CredentialChain
	systemText  string

	// OnTransition, when set, is called on every state change
	OnTransition func(TurnState)

	mu    sync.Mutex
	state atomic.Int32
}

// NewChatOrchestrator wires a session to a gateway. The session's explicit
// credential field is always consulted before the given providers.
func NewChatOrchestrator(session *SessionState, gateway CompletionGateway, providers CredentialChain, systemText string) *ChatOrchestrator {
	if systemText == "" {
		systemText = DefaultSystemText
	}
	chain := append(CredentialChain{sessionCredential{session: session}}, providers...)
	return &ChatOrchestrator{
		session:     session,
		gateway:     gateway,
		credentials: chain,
		systemText:  systemText,
	}
}

func (o *ChatOrchestrator) Session() *SessionState { return o.session }

// State returns the current protocol state
func (o *ChatOrchestrator) State() TurnState {
	return TurnState(o.state.Load())
}

func (o *ChatOrchestrator) transition(s TurnState) {
	o.state.Store(int32(s))
	if o.OnTransition != nil {
		o.OnTransition(s)
	}
}

// ResolveCredential runs the credential chain without starting a turn
func (o *ChatOrchestrator) ResolveCredential() (string, string, bool) {
	return o.credentials.Resolve()
}

// BuildRequest returns the message list for the current transcript: the
// composed system prompt followed by every transcript message.
func (o *ChatOrchestrator) BuildRequest() []Message {
	transcript := o.session.Messages()
	out := make([]Message, 0, len(transcript)+1)
	out = append(out, Message{
		Role:    RoleSystem,
		Content: ComposeSystemPrompt(o.systemText, o.session.Personality()),
	})
	return append(out, transcript...)
}

// Turn runs one full traversal of the protocol for input. It never panics on
// gateway failure; the failure is returned in the result and the session stays usable.
func (o *ChatOrchestrator) Turn(ctx context.Context, input string) TurnResult {
	if !o.mu.TryLock() {
		return TurnResult{Err: ErrTurnInFlight}
	}
	defer o.mu.Unlock()

	if strings.TrimSpace(input) == "" {
		return TurnResult{Err: ErrEmptyInput}
	}

	log := SessionLogger(o.session.ID)
	o.session.AppendUserMessage(input)

	o.transition(StateAwaitingCredential)
	credential, source, ok := o.credentials.Resolve()
	if !ok {
		return o.settle(TurnResult{Err: ErrMissingCredential})
	}
	log.Debug().Str("credential_source", source).Msg("credential resolved")

	o.transition(StateBuildingRequest)
	req := CompletionRequest{
		Messages:   o.BuildRequest(),
		Model:      o.session.Config().SelectedModel,
		Credential: credential,
	}

	o.transition(StateCallingGateway)
	completion, err := o.gateway.Complete(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("model", req.Model).Msg("turn failed")
		return o.settle(TurnResult{Err: err})
	}

	prompt, completionTokens := completion.Usage.PromptTokens, completion.Usage.CompletionTokens
	if err := o.session.AddUsage(prompt, completionTokens); err != nil {
		// a gateway reporting negative usage breaks its contract; count nothing
		log.Error().Err(err).Msg("discarding invalid usage")
		prompt, completionTokens = 0, 0
	}
	o.session.AppendAssistantMessage(completion.Content)
	log.Debug().
		Str("model", req.Model).
		Int64("prompt_tokens", prompt).
		Int64("completion_tokens", completionTokens).
		Msg("turn settled")

	return o.settle(TurnResult{
		OK:    true,
		Reply: completion.Content,
		Usage: TokenUsage{PromptTokens: prompt, CompletionTokens: completionTokens},
	})
}

func (o *ChatOrchestrator) settle(r TurnResult) TurnResult {
	o.transition(StateSettled)
	o.transition(StateIdle)
	return r
}

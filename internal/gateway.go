package internal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CompletionRequest is what the orchestrator hands to a gateway for one turn
type CompletionRequest struct {
	Messages   []Message
	Model      string
	Credential string
}

// TokenUsage is the provider-reported usage for one completion
type TokenUsage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Completion is a successful gateway result
type Completion struct {
	Content string
	Usage   TokenUsage
}

// CompletionGateway sends a transcript to a hosted model.
// Failures should be *GatewayError so callers can tell the kinds apart.
type CompletionGateway interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// GatewayOptions configures gateway construction
type GatewayOptions struct {
	Provider    string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// NewGateway returns the gateway for opts.Provider. Unknown providers yield a
// gateway that fails every call as unavailable rather than a construction error,
// so the session stays usable for offline actions.
func NewGateway(opts GatewayOptions) CompletionGateway {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", "openai":
		return NewOpenAIGateway(opts)
	default:
		return unavailableGateway{reason: fmt.Errorf("unsupported provider %q (supported: openai)", opts.Provider)}
	}
}

type unavailableGateway struct {
	reason error
}

func (g unavailableGateway) Complete(_ context.Context, req CompletionRequest) (Completion, error) {
	return Completion{}, &GatewayError{Kind: GatewayUnavailable, Model: req.Model, Err: g.reason}
}

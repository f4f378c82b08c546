package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultTemperature = 0.7
	defaultTimeout     = 60 * time.Second
)

// OpenAIGateway implements CompletionGateway with the chat completions API
type OpenAIGateway struct {
	BaseURL     string
	Temperature float32
	HTTPClient  *http.Client
}

// NewOpenAIGateway creates a gateway; zero options fall back to defaults
func NewOpenAIGateway(opts GatewayOptions) *OpenAIGateway {
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIGateway{
		BaseURL:     strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		Temperature: temperature,
		HTTPClient:  &http.Client{Timeout: timeout},
	}
}

func (g *OpenAIGateway) client(credential string) *openai.Client {
	cfg := openai.DefaultConfig(credential)
	if g.BaseURL != "" {
		cfg.BaseURL = g.BaseURL
	}
	if g.HTTPClient != nil {
		cfg.HTTPClient = g.HTTPClient
	}
	return openai.NewClientWithConfig(cfg)
}

// Complete sends one chat completion request
func (g *OpenAIGateway) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	LogDebug("openai: sending %d message(s) to %s", len(messages), req.Model)
	resp, err := g.client(req.Credential).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: g.Temperature,
	})
	if err != nil {
		return Completion{}, classifyOpenAIError(req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, &GatewayError{
			Kind:  GatewayUpstreamError,
			Model: req.Model,
			Err:   errors.New("response contained no choices"),
		}
	}

	return Completion{
		Content: resp.Choices[0].Message.Content,
		Usage: TokenUsage{
			PromptTokens:     int64(resp.Usage.PromptTokens),
			CompletionTokens: int64(resp.Usage.CompletionTokens),
		},
	}, nil
}

// Verify checks the credential by listing models
func (g *OpenAIGateway) Verify(ctx context.Context, credential string) (int, error) {
	models, err := g.client(credential).ListModels(ctx)
	if err != nil {
		return 0, classifyOpenAIError("", err)
	}
	return len(models.Models), nil
}

func classifyOpenAIError(model string, err error) error {
	kind := GatewayNetworkError

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var netErr net.Error
	switch {
	case errors.As(err, &apiErr):
		kind = kindForStatus(apiErr.HTTPStatusCode)
	case errors.As(err, &reqErr):
		kind = kindForStatus(reqErr.HTTPStatusCode)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), errors.As(err, &netErr):
		kind = GatewayNetworkError
	}

	return &GatewayError{Kind: kind, Model: model, Err: err}
}

func kindForStatus(status int) GatewayErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return GatewayAuthError
	case status == 0:
		return GatewayNetworkError
	default:
		return GatewayUpstreamError
	}
}

var _ CompletionGateway = (*OpenAIGateway)(nil)

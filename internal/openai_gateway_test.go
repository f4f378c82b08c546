package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIServer(t *testing.T, handler http.HandlerFunc) *OpenAIGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIGateway(GatewayOptions{BaseURL: srv.URL + "/v1/", Timeout: 5 * time.Second})
}

func testRequest() CompletionRequest {
	return CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "Style: Zen"},
			{Role: RoleUser, Content: "hi"},
		},
		Model:      "gpt-4o-mini",
		Credential: "sk-test",
	}
}

func TestOpenAIGateway_Complete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth string

	gw := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hello"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	})

	completion, err := gw.Complete(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "hello", completion.Content)
	assert.Equal(t, TokenUsage{PromptTokens: 10, CompletionTokens: 5}, completion.Usage)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[1].Content)
}

func TestOpenAIGateway_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind GatewayErrorKind
	}{
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			wantKind: GatewayAuthError,
		},
		{
			name:     "forbidden",
			status:   http.StatusForbidden,
			body:     `{"error":{"message":"forbidden","type":"invalid_request_error"}}`,
			wantKind: GatewayAuthError,
		},
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			body:     `{"error":{"message":"boom","type":"server_error"}}`,
			wantKind: GatewayUpstreamError,
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"error":{"message":"slow down","type":"rate_limit_error"}}`,
			wantKind: GatewayUpstreamError,
		},
		{
			name:     "no choices",
			status:   http.StatusOK,
			body:     `{"id":"x","object":"chat.completion","choices":[],"usage":{"prompt_tokens":1,"completion_tokens":0}}`,
			wantKind: GatewayUpstreamError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := gw.Complete(context.Background(), testRequest())
			require.Error(t, err)

			var gwErr *GatewayError
			require.True(t, errors.As(err, &gwErr), "got %T: %v", err, err)
			assert.Equal(t, tt.wantKind, gwErr.Kind)
			assert.Equal(t, "gpt-4o-mini", gwErr.Model)
		})
	}
}

func TestOpenAIGateway_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gw := NewOpenAIGateway(GatewayOptions{BaseURL: url + "/v1", Timeout: 2 * time.Second})
	_, err := gw.Complete(context.Background(), testRequest())

	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, GatewayNetworkError, gwErr.Kind)
}

func TestOpenAIGateway_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	gw := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := gw.Complete(ctx, testRequest())

	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, GatewayNetworkError, gwErr.Kind)
}

func TestOpenAIGateway_Verify(t *testing.T) {
	gw := newTestOpenAIServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
			return
		}
		require.Equal(t, "/v1/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gpt-4o","object":"model"},{"id":"gpt-4o-mini","object":"model"}]}`))
	})

	n, err := gw.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = gw.Verify(context.Background(), "bad")
	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, GatewayAuthError, gwErr.Kind)
}

func TestNewOpenAIGateway_Defaults(t *testing.T) {
	gw := NewOpenAIGateway(GatewayOptions{BaseURL: " https://example.test/v1/ "})
	assert.Equal(t, "https://example.test/v1", gw.BaseURL)
	assert.Equal(t, float32(defaultTemperature), gw.Temperature)
	assert.Equal(t, defaultTimeout, gw.HTTPClient.Timeout)

	gw = NewOpenAIGateway(GatewayOptions{Temperature: 0.2, Timeout: time.Second})
	assert.Equal(t, float32(0.2), gw.Temperature)
	assert.Equal(t, time.Second, gw.HTTPClient.Timeout)
}

func TestNewGateway(t *testing.T) {
	assert.IsType(t, &OpenAIGateway{}, NewGateway(GatewayOptions{}))
	assert.IsType(t, &OpenAIGateway{}, NewGateway(GatewayOptions{Provider: " OpenAI "}))

	gw := NewGateway(GatewayOptions{Provider: "carrier-pigeon"})
	_, err := gw.Complete(context.Background(), CompletionRequest{Model: "gpt-4o"})

	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, GatewayUnavailable, gwErr.Kind)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

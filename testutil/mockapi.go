package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// MockAPI is an OpenAI-compatible server answering chat completions with a
// fixed reply and listing a fixed set of models.
type MockAPI struct {
	Server *httptest.Server

	Reply            string
	PromptTokens     int
	CompletionTokens int
	// APIKey, when set, is the only bearer token accepted
	APIKey string

	mu       sync.Mutex
	requests []ChatRequest
}

// ChatRequest is the part of a chat completion request the mock records
type ChatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// NewMockAPI starts a mock API that is closed when the test ends
func NewMockAPI(t *testing.T, reply string) *MockAPI {
	t.Helper()
	m := &MockAPI{Reply: reply, PromptTokens: 10, CompletionTokens: 5}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", m.handleChat)
	mux.HandleFunc("/v1/models", m.handleModels)
	m.Server = httptest.NewServer(mux)
	t.Cleanup(m.Server.Close)
	return m
}

// BaseURL is the value for --base-url
func (m *MockAPI) BaseURL() string {
	return m.Server.URL + "/v1"
}

// Requests returns the chat requests received so far
func (m *MockAPI) Requests() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChatRequest(nil), m.requests...)
}

func (m *MockAPI) authorized(w http.ResponseWriter, r *http.Request) bool {
	if m.APIKey == "" || r.Header.Get("Authorization") == "Bearer "+m.APIKey {
		return true
	}
	writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
		"error": map[string]interface{}{
			"message": "Incorrect API key provided",
			"type":    "invalid_request_error",
			"code":    "invalid_api_key",
		},
	})
	return false
}

func (m *MockAPI) handleChat(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) {
		return
	}
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": map[string]interface{}{"message": err.Error(), "type": "invalid_request_error"},
		})
		return
	}
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  req.Model,
		"choices": []map[string]interface{}{{
			"index":         0,
			"message":       map[string]interface{}{"role": "assistant", "content": m.Reply},
			"finish_reason": "stop",
		}},
		"usage": map[string]interface{}{
			"prompt_tokens":     m.PromptTokens,
			"completion_tokens": m.CompletionTokens,
			"total_tokens":      m.PromptTokens + m.CompletionTokens,
		},
	})
}

func (m *MockAPI) handleModels(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"object": "list",
		"data": []map[string]interface{}{
			{"id": "gpt-4o", "object": "model"},
			{"id": "gpt-4o-mini", "object": "model"},
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

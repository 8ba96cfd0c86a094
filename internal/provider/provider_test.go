package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirokim/Onion-ring/internal/session"
	"github.com/mirokim/Onion-ring/internal/window"
)

func TestCredentialsEmpty(t *testing.T) {
	assert.True(t, Credentials{}.Empty())
	assert.True(t, Credentials{Provider: ProviderOpenAI, Model: "gpt-4o"}.Empty(), "hosted provider without key")
	assert.False(t, Credentials{Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-x"}.Empty())
	assert.False(t, Credentials{Provider: ProviderOllama, Model: "llama3.2:3b"}.Empty(), "local provider needs no key")
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(Credentials{Provider: "carrier-pigeon"}, nil)
	require.Error(t, err)
}

func TestAnthropicCompleteMarshalsCall(t *testing.T) {
	var captured anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hello "},{"type":"text","text":"there"}]}`))
	}))
	defer server.Close()

	client := &AnthropicClient{HTTPClient: server.Client()}
	res, err := client.Complete(context.Background(), Request{
		Participant:  "claude",
		Credentials:  Credentials{Provider: ProviderAnthropic, Model: "claude-x", APIKey: "test-key", BaseURL: server.URL},
		Instructions: "be kind",
		Messages: []window.CallMessage{
			{Role: window.RoleIncoming, Speaker: "gpt", Content: "[gpt] hi", Files: []session.FileRef{{Name: "a.png", MediaType: "image/png", Data: []byte{1, 2}}}},
			{Role: window.RoleOwn, Speaker: "claude", Content: "my prior turn"},
		},
	})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, "hello there", res.Content)

	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "be kind", captured.System)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "assistant", captured.Messages[1].Role)
	require.Len(t, captured.Messages[0].Content, 2)
	assert.Equal(t, "image", captured.Messages[0].Content[0].Type)
	assert.Equal(t, "base64", captured.Messages[0].Content[0].Source.Type)
}

func TestOpenAICompleteReportsAPIErrorAsFailedTurn(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	client := &OpenAIClient{HTTPClient: server.Client()}
	res, err := client.Complete(context.Background(), Request{
		Credentials: Credentials{Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-bad", BaseURL: server.URL},
	})
	require.NoError(t, err, "call failures become results, not errors")
	assert.Equal(t, StopError, res.StopReason)
	assert.Contains(t, res.Err, "http 401")
}

func TestRetryRecoversFromTransientServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"recovered"}}]}`))
	}))
	defer server.Close()

	client := &OpenAIClient{HTTPClient: server.Client()}
	res, err := client.Complete(context.Background(), Request{
		Credentials: Credentials{Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-x", BaseURL: server.URL},
	})
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, "recovered", res.Content)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryDoesNotRepeatClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := &OllamaClient{HTTPClient: server.Client()}
	res, err := client.Complete(context.Background(), Request{
		Credentials: Credentials{Provider: ProviderOllama, Model: "llama3.2:3b", BaseURL: server.URL},
	})
	require.NoError(t, err)
	assert.Equal(t, StopError, res.StopReason)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteReturnsContextErrorOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &OllamaClient{HTTPClient: http.DefaultClient}
	_, err := client.Complete(ctx, Request{
		Credentials: Credentials{Provider: ProviderOllama, Model: "llama3.2:3b", BaseURL: "http://127.0.0.1:0"},
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestOllamaCompleteParsesChatResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		assert.Equal(t, "system", req.Messages[0].Role)
		_, _ = w.Write([]byte(`{"message":{"content":"local reply"}}`))
	}))
	defer server.Close()

	client := &OllamaClient{HTTPClient: server.Client()}
	res, err := client.Complete(context.Background(), Request{
		Credentials:  Credentials{Provider: ProviderOllama, Model: "llama3.2:3b", BaseURL: server.URL},
		Instructions: "be brief",
		Messages:     []window.CallMessage{{Role: window.RoleIncoming, Content: "[gpt] hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "local reply", res.Content)
}

func TestRouterDispatchesByProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"content":"routed"}}`))
	}))
	defer server.Close()

	router := &Router{HTTPClient: server.Client()}
	res, err := router.Complete(context.Background(), Request{
		Credentials: Credentials{Provider: ProviderOllama, Model: "llama3.2:3b", BaseURL: server.URL},
	})
	require.NoError(t, err)
	assert.Equal(t, "routed", res.Content)

	_, err = router.Complete(context.Background(), Request{Credentials: Credentials{Provider: "fax"}})
	require.Error(t, err)
}

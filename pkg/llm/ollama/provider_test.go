package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CustomGPTer/RAMS-Generator/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProviderChat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(chatResponse{Model: got.Model, Message: message{Role: "assistant", Content: "hello"}, Done: true})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL+"/", "llama3")
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "sys"},
		{Role: "model", Content: "earlier"},
		{Role: llm.RoleUser, Content: "hi"},
	}, llm.WithTemperature(0.2), llm.WithMaxTokens(100))

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, 100, got.Options.NumPredict)
	assert.InDelta(t, 0.2, got.Options.Temperature, 1e-9)
}

func TestOllamaProviderStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewOllamaProvider(server.URL, "missing").Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

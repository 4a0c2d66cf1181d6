package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testsmith/internal/config"
)

func testConfig(host string) config.LLMConfig {
	return config.LLMConfig{
		Host:        host,
		Model:       "llama3.1",
		Temperature: 0.3,
		TopP:        0.9,
		MaxTokens:   4000,
		Timeout:     "2s",
	}
}

func TestCompleteSuccess(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(generateResponse{Response: "TEST(Foo, Basic) {}"})
	}))
	defer srv.Close()

	c := NewOllamaClient(testConfig(srv.URL))
	out, err := c.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)

	assert.Equal(t, "TEST(Foo, Basic) {}", out)
	assert.Equal(t, "llama3.1", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, "system prompt\n\nuser prompt", got.Prompt)
	assert.Equal(t, 0.3, got.Options.Temperature)
	assert.Equal(t, 0.9, got.Options.TopP)
	assert.Equal(t, 4000, got.Options.NumPredict)
}

func TestCompleteNoSystemPrompt(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(generateResponse{Response: "ok"})
	}))
	defer srv.Close()

	c := NewOllamaClient(testConfig(srv.URL))
	_, err := c.Complete(context.Background(), "", "just the prompt")
	require.NoError(t, err)
	assert.Equal(t, "just the prompt", got.Prompt)
}

func TestCompleteEmptyGeneration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "   \n"})
	}))
	defer srv.Close()

	c := NewOllamaClient(testConfig(srv.URL))
	_, err := c.Complete(context.Background(), "", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty generation")
}

func TestCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(testConfig(srv.URL))
	_, err := c.Complete(context.Background(), "", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Error: "out of memory"})
	}))
	defer srv.Close()

	c := NewOllamaClient(testConfig(srv.URL))
	_, err := c.Complete(context.Background(), "", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestCompleteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(generateResponse{Response: "late"})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = "50ms"
	c := NewOllamaClient(cfg)

	_, err := c.Complete(context.Background(), "", "p")
	assert.Error(t, err)
}

func TestCompleteUnreachable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Timeout = "200ms"
	c := NewOllamaClient(cfg)

	_, err := c.Complete(context.Background(), "", "p")
	assert.Error(t, err)
}

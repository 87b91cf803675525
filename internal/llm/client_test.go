package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestClientChat(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "I would call here."}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(testLogger(), Options{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"})
	reply, err := c.Chat(context.Background(), []Message{
		{Role: "system", Content: "you play poker"},
		{Role: "user", Content: "pocket jacks, what now?"},
	})
	require.NoError(t, err)
	require.Equal(t, "I would call here.", reply)
}

func TestClientChatRequiresAPIKey(t *testing.T) {
	t.Parallel()
	c := NewClient(testLogger(), Options{BaseURL: "http://unused", Model: "m"})
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
}

func TestClientChatErrorStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(testLogger(), Options{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.ErrorContains(t, err, "429")
}

func TestClientChatModelError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited"},
		})
	}))
	defer srv.Close()

	c := NewClient(testLogger(), Options{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.ErrorContains(t, err, "rate limited")
}

func TestClientChatNoChoices(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(testLogger(), Options{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	_, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.ErrorContains(t, err, "no choices")
}

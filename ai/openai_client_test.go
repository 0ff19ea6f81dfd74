package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClientGenerateResponseSendsPromptAndDecodesChoice(t *testing.T) {
	var gotBody chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gpt-test","choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL, 0)
	resp, err := client.GenerateResponse(context.Background(), "do the thing", &AIOptions{Model: "gpt-test", SystemPrompt: "be terse"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, resp.Content)
	assert.Equal(t, "gpt-test", resp.Model)
	assert.Equal(t, "gpt-test", gotBody.Model)
	assert.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
}

func TestOpenAIClientGenerateResponseRequiresAPIKey(t *testing.T) {
	client := NewOpenAIClient("", "", 0)
	_, err := client.GenerateResponse(context.Background(), "hi", nil)
	assert.Error(t, err)
}

func TestOpenAIClientGenerateResponseSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limited"},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL, 0)
	_, err := client.GenerateResponse(context.Background(), "hi", nil)
	assert.ErrorContains(t, err, "rate limited")
}

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"hrdocs/internal/domain/letters"
	"hrdocs/internal/platform/config"
)

func TestOllamaInfer(t *testing.T) {
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "Dear Asha,", "done": true})
	}))
	defer srv.Close()

	text, err := NewOllamaClient(srv.URL+"/", "").Infer(context.Background(), "write an offer")

	require.NoError(t, err)
	assert.Equal(t, "Dear Asha,", text)
	assert.Equal(t, ollamaRequest{Model: "llama3", Prompt: "write an offer", Stream: false}, got)
}

func TestOllamaInferNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "missing").Infer(context.Background(), "x")

	assert.ErrorContains(t, err, "status 404")
}

func TestOllamaInferHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := NewOllamaClient(srv.URL, "").Infer(ctx, "x")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCandidateText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []*genai.Part{
			{Text: "thinking", Thought: true},
			{Text: "Dear "},
			{Text: "Asha"},
		}},
	}}}

	text, err := candidateText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Dear Asha", text)

	_, err = candidateText(&genai.GenerateContentResponse{})
	assert.Error(t, err)
}

func TestNewSelectsProvider(t *testing.T) {
	gen, err := New(context.Background(), config.Config{AIProvider: config.AIProviderNone})
	require.NoError(t, err)
	assert.IsType(t, letters.DisabledGenerator{}, gen)

	gen, err = New(context.Background(), config.Config{AIProvider: config.AIProviderOllama, AIURL: "http://ollama:11434"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaClient{}, gen)

	_, err = New(context.Background(), config.Config{AIProvider: config.AIProviderGemini})
	assert.Error(t, err)

	_, err = New(context.Background(), config.Config{AIProvider: "openai"})
	assert.Error(t, err)
}

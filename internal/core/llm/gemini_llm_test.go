package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/markdave123-py/Docsense/internal/core"
)

func TestGeminiParts(t *testing.T) {
	tests := []struct {
		name       string
		messages   []core.Message
		wantSystem []genai.Part
		wantUser   []genai.Part
	}{
		{
			name:     "empty",
			messages: nil,
		},
		{
			name:       "answer prompt",
			messages:   AnswerRequest("doc", "q").Messages,
			wantSystem: []genai.Part{genai.Text(systemPrompt)},
			wantUser:   []genai.Part{genai.Text("Document content: doc"), genai.Text("Question: q")},
		},
		{
			name:       "explanation prompt",
			messages:   ExplanationRequest("doc", "q").Messages,
			wantSystem: []genai.Part{genai.Text(systemPrompt)},
			wantUser:   []genai.Part{genai.Text("Document content: doc"), genai.Text("Question: q"), genai.Text(explainPrompt)},
		},
		{
			name: "system messages anywhere",
			messages: []core.Message{
				{Role: core.RoleUser, Content: "a"},
				{Role: core.RoleSystem, Content: "s1"},
				{Role: core.RoleUser, Content: "b"},
				{Role: core.RoleSystem, Content: "s2"},
			},
			wantSystem: []genai.Part{genai.Text("s1"), genai.Text("s2")},
			wantUser:   []genai.Part{genai.Text("a"), genai.Text("b")},
		},
		{
			name:     "user only",
			messages: []core.Message{{Role: core.RoleUser, Content: "a"}},
			wantUser: []genai.Part{genai.Text("a")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			system, user := geminiParts(tt.messages)
			assert.Equal(t, tt.wantSystem, system)
			assert.Equal(t, tt.wantUser, user)
		})
	}
}

func TestNewGeminiLLMRequiresKey(t *testing.T) {
	_, err := NewGeminiLLM(context.Background(), " ", "")
	assert.Error(t, err)
}

type geminiRequest struct {
	SystemInstruction struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiLLM {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g, err := NewGeminiLLM(context.Background(), "test-key", "",
		option.WithEndpoint(server.URL), option.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestGeminiLLM_Complete(t *testing.T) {
	var got geminiRequest
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/"+defaultGeminiModel+":generateContent", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model",
			"parts": [{"text": "  Paris"}, {"text": ".\n- France  "}]}, "finishReason": 1}]}`))
	})

	out, err := g.Complete(context.Background(), AnswerRequest("Paris is the capital of France.", "What is the capital of France?"))

	require.NoError(t, err)
	assert.Equal(t, "Paris.\n- France", out)
	require.Len(t, got.SystemInstruction.Parts, 1)
	assert.Equal(t, systemPrompt, got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 2)
	assert.Equal(t, "Document content: Paris is the capital of France.", got.Contents[0].Parts[0].Text)
	assert.Equal(t, "Question: What is the capital of France?", got.Contents[0].Parts[1].Text)
	assert.Equal(t, 500, got.GenerationConfig.MaxOutputTokens)
	assert.InDelta(t, 0.7, got.GenerationConfig.Temperature, 1e-6)
}

func TestGeminiLLM_NoCandidates(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, err := g.Complete(context.Background(), AnswerRequest("doc", "q"))

	assert.ErrorContains(t, err, "no candidates")
}

func TestGeminiLLM_ProviderError(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`))
	})

	_, err := g.Complete(context.Background(), AnswerRequest("doc", "q"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini generate")
}

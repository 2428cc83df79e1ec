package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/Docsense/internal/core"
)

const defaultGeminiModel = "gemini-1.5-flash"

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

// NewGeminiLLM dials the Gemini API. Extra opts are applied after the API key,
// e.g. option.WithEndpoint for a proxy.
func NewGeminiLLM(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiLLM, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Complete maps system messages onto the model's system instruction and sends
// the remaining messages as parts of a single user turn.
func (g *GeminiLLM) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	m := g.client.GenerativeModel(g.modelName)

	system, parts := geminiParts(req.Messages)
	if len(system) > 0 {
		m.SystemInstruction = &genai.Content{Parts: system}
	}
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Temperature > 0 {
		m.SetTemperature(float32(req.Temperature))
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini generate: no candidates returned")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func geminiParts(messages []core.Message) (system, user []genai.Part) {
	for _, msg := range messages {
		if msg.Role == core.RoleSystem {
			system = append(system, genai.Text(msg.Content))
			continue
		}
		user = append(user, genai.Text(msg.Content))
	}
	return system, user
}

var _ core.LLMProvider = (*GeminiLLM)(nil)

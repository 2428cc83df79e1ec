package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/markdave123-py/Docsense/internal/core"
)

const defaultOpenAIModel = "gpt-3.5-turbo"

// OpenAILLM talks to the OpenAI chat completions API (or a compatible server
// when a base URL is given).
type OpenAILLM struct {
	client    openai.Client
	modelName string
}

func NewOpenAILLM(apiKey, baseURL, modelName string) (*OpenAILLM, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// A failed call fails the request; callers ask the user to try again.
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAILLM{client: openai.NewClient(opts...), modelName: modelName}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, req core.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case core.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.modelName),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ core.LLMProvider = (*OpenAILLM)(nil)

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Docsense/internal/core"
	"github.com/markdave123-py/Docsense/internal/models"
)

const (
	systemPrompt      = "You are a helpful assistant."
	explainPrompt     = "Explain why the answer is correct."
	answerMaxTokens   = 500
	explainMaxTokens  = 300
	promptTemperature = 0.7
)

// CompletionClient asks the provider for an answer and an explanation of it.
type CompletionClient struct {
	provider   core.LLMProvider
	concurrent bool
}

// NewCompletionClient wraps provider. With concurrent set, the answer and
// explanation prompts are in flight at the same time.
func NewCompletionClient(provider core.LLMProvider, concurrent bool) *CompletionClient {
	return &CompletionClient{provider: provider, concurrent: concurrent}
}

// AnswerRequest builds the primary prompt.
func AnswerRequest(documentText, question string) core.CompletionRequest {
	return core.CompletionRequest{
		Messages:    baseMessages(documentText, question),
		MaxTokens:   answerMaxTokens,
		Temperature: promptTemperature,
	}
}

// ExplanationRequest builds the prompt asking why the answer holds.
func ExplanationRequest(documentText, question string) core.CompletionRequest {
	messages := append(baseMessages(documentText, question), core.Message{Role: core.RoleUser, Content: explainPrompt})
	return core.CompletionRequest{
		Messages:    messages,
		MaxTokens:   explainMaxTokens,
		Temperature: promptTemperature,
	}
}

func baseMessages(documentText, question string) []core.Message {
	return []core.Message{
		{Role: core.RoleSystem, Content: systemPrompt},
		{Role: core.RoleUser, Content: "Document content: " + documentText},
		{Role: core.RoleUser, Content: "Question: " + question},
	}
}

// Answer issues both prompts. Any provider error fails the whole call; in
// concurrent mode it also cancels the sibling request.
func (c *CompletionClient) Answer(ctx context.Context, documentText, question string) (*models.CompletionResult, error) {
	start := time.Now()
	var result models.CompletionResult

	answer := func(ctx context.Context) (err error) {
		result.AnswerText, err = c.provider.Complete(ctx, AnswerRequest(documentText, question))
		if err != nil {
			return fmt.Errorf("answer prompt: %w", err)
		}
		return nil
	}
	explain := func(ctx context.Context) (err error) {
		result.ExplanationText, err = c.provider.Complete(ctx, ExplanationRequest(documentText, question))
		if err != nil {
			return fmt.Errorf("explanation prompt: %w", err)
		}
		return nil
	}

	if c.concurrent {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return answer(gctx) })
		g.Go(func() error { return explain(gctx) })
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		if err := answer(ctx); err != nil {
			return nil, err
		}
		if err := explain(ctx); err != nil {
			return nil, err
		}
	}

	slog.Debug("completions finished", "concurrent", c.concurrent, "elapsed", time.Since(start))
	return &result, nil
}

package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pbarbosa/finbot/internal/model"
)

// Generator produces free-form Portuguese replies: conversational
// responses, spending advice, and financial research answers.
type Generator struct {
	client Client
	logger *slog.Logger
}

func NewGenerator(client Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, logger: logger}
}

func (g *Generator) Conversational(ctx context.Context, message string, intent model.Intent, fresh bool) (string, error) {
	text, err := g.client.Generate(ctx, conversationalPrompt(message, intent, fresh))
	if err != nil {
		return "", fmt.Errorf("generating conversational reply: %w", err)
	}
	return text, nil
}

func (g *Generator) SpendingAdvice(ctx context.Context, spending []model.CategoryTotal, userContext string) (string, error) {
	text, err := g.client.Generate(ctx, advicePrompt(spending, userContext))
	if err != nil {
		return "", fmt.Errorf("generating spending advice: %w", err)
	}
	return text, nil
}

func (g *Generator) Research(ctx context.Context, topic, refinement string) (string, error) {
	text, err := g.client.Generate(ctx, researchPrompt(topic, refinement))
	if err != nil {
		return "", fmt.Errorf("generating research answer: %w", err)
	}
	return text, nil
}

package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pbarbosa/finbot/internal/model"
	"github.com/pbarbosa/finbot/internal/state"
)

// Analyzer classifies user messages into intents and entities using an
// LLM client. Upstream or parse failures never surface as hard errors:
// the returned Analysis carries the failure in Err with the intent set
// to unknown, so callers can fall back to a conversational reply.
type Analyzer struct {
	client Client
	logger *slog.Logger
}

func NewAnalyzer(client Client, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{client: client, logger: logger}
}

func (a *Analyzer) Analyze(ctx context.Context, message string, conv *state.Conversation) (model.Analysis, error) {
	prompt := analysisPrompt(message, conv)

	raw, err := a.client.Generate(ctx, prompt)
	if err != nil {
		a.logger.Error("analysis generation failed", "error", err)
		return failedAnalysis(fmt.Sprintf("generation failed: %v", err)), nil
	}

	obj, err := parseJSONObject(raw)
	if err != nil {
		a.logger.Error("analysis response is not valid JSON", "error", err, "raw", raw)
		return failedAnalysis(fmt.Sprintf("malformed response: %v", err)), nil
	}

	analysis := model.DecodeAnalysis(obj)
	a.logger.Debug("message analyzed", "intent", analysis.Intent)
	return analysis, nil
}

func failedAnalysis(reason string) model.Analysis {
	return model.Analysis{Intent: model.IntentUnknown, Err: reason}
}

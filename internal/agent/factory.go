package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diogo/tobchat/internal/config"
)

// New builds the configured backend wrapped in the company-info workflow.
// The returned close function releases provider resources.
func New(ctx context.Context, cfg config.AgentConfig, logger zerolog.Logger) (Agent, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		backend Agent
		closeFn = func() error { return nil }
	)

	switch cfg.Provider {
	case config.ProviderOpenAI:
		backend = NewOpenAIAgent(OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.ResolvedModel(),
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}, logger)
	case config.ProviderGemini:
		g, err := NewGeminiAgent(ctx, GeminiConfig{
			APIKey:      cfg.GoogleAPIKey,
			Model:       cfg.ResolvedModel(),
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		backend, closeFn = g, g.Close
	case config.ProviderMock:
		backend = NewScriptedAgent()
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	tool, err := NewCompanyInfoTool(logger)
	if err != nil {
		return nil, nil, err
	}

	logger.Info().
		Str("agent", backend.Name()).
		Bool("rag", cfg.RAGEnabled).
		Float64("temperature", cfg.Temperature).
		Int("maxTokens", cfg.MaxTokens).
		Msg("agent ready")

	return NewCompanyInfoWorkflow(backend, tool, cfg.RAGEnabled, logger), closeFn, nil
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/diogo/tobchat/internal/models"
)

// OpenAIConfig configures the OpenAI backend
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // empty for api.openai.com
	Model       string
	Temperature float64
	MaxTokens   int
}

// OpenAIAgent streams chat completions from OpenAI
type OpenAIAgent struct {
	client *openai.Client
	cfg    OpenAIConfig
	logger zerolog.Logger
}

// NewOpenAIAgent creates an OpenAI-backed agent
func NewOpenAIAgent(cfg OpenAIConfig, logger zerolog.Logger) *OpenAIAgent {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = models.DefaultOpenAIModel
	}
	return &OpenAIAgent{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger,
	}
}

// Name implements Agent
func (a *OpenAIAgent) Name() string {
	return "openai:" + a.cfg.Model
}

// toOpenAIMessages prepends the system prompt and maps roles one to one
func toOpenAIMessages(messages []models.Message) []openai.ChatCompletionMessage {
	system, dialogue := splitSystem(messages)
	out := make([]openai.ChatCompletionMessage, 0, len(dialogue)+1)
	out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	for _, m := range dialogue {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

// Stream implements Agent
func (a *OpenAIAgent) Stream(ctx context.Context, messages []models.Message, emit EmitFunc) error {
	req := openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Messages:    toOpenAIMessages(messages),
		Temperature: float32(a.cfg.Temperature),
		MaxTokens:   a.cfg.MaxTokens,
		Stream:      true,
	}

	stream, err := a.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create chat completion stream: %w", err)
	}
	defer stream.Close()

	chunks := 0
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			a.logger.Debug().Int("chunks", chunks).Str("model", a.cfg.Model).Msg("openai stream finished")
			return nil
		}
		if err != nil {
			return fmt.Errorf("openai stream error: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		chunks++
		if err := emit(delta); err != nil {
			return err
		}
	}
}

package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/diogo/tobchat/internal/models"
)

// GeminiConfig configures the Google Gemini backend
type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// GeminiAgent streams replies from Google Gemini
type GeminiAgent struct {
	client *genai.Client
	cfg    GeminiConfig
	logger zerolog.Logger
}

// NewGeminiAgent creates a Gemini-backed agent. Close releases the client.
func NewGeminiAgent(ctx context.Context, cfg GeminiConfig, logger zerolog.Logger) (*GeminiAgent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = models.DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAgent{client: client, cfg: cfg, logger: logger}, nil
}

// Name implements Agent
func (a *GeminiAgent) Name() string {
	return "gemini:" + a.cfg.Model
}

// Close releases the underlying client
func (a *GeminiAgent) Close() error {
	return a.client.Close()
}

// toGeminiHistory maps the dialogue to Gemini contents and splits off the
// final user turn, which is sent as the new message
func toGeminiHistory(dialogue []models.Message) ([]*genai.Content, string) {
	var prompt string
	if n := len(dialogue); n > 0 && dialogue[n-1].Role == models.RoleUser {
		prompt = dialogue[n-1].Content
		dialogue = dialogue[:n-1]
	}

	history := make([]*genai.Content, 0, len(dialogue))
	for _, m := range dialogue {
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history, prompt
}

// Stream implements Agent
func (a *GeminiAgent) Stream(ctx context.Context, messages []models.Message, emit EmitFunc) error {
	system, dialogue := splitSystem(messages)
	history, prompt := toGeminiHistory(dialogue)
	if prompt == "" {
		return fmt.Errorf("conversation does not end with a user message")
	}

	model := a.client.GenerativeModel(a.cfg.Model)
	model.SetTemperature(float32(a.cfg.Temperature))
	model.SetMaxOutputTokens(int32(a.cfg.MaxTokens))
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	chat := model.StartChat()
	chat.History = history

	iter := chat.SendMessageStream(ctx, genai.Text(prompt))
	chunks := 0
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			a.logger.Debug().Int("chunks", chunks).Str("model", a.cfg.Model).Msg("gemini stream finished")
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream error: %w", err)
		}

		for _, delta := range candidateText(resp) {
			chunks++
			if err := emit(delta); err != nil {
				return err
			}
		}
	}
}

// candidateText extracts the text parts of the first candidate
func candidateText(resp *genai.GenerateContentResponse) []string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var out []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok && text != "" {
			out = append(out, string(text))
		}
	}
	return out
}

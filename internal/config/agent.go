package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	apierrors "github.com/diogo/tobchat/internal/errors"
	"github.com/diogo/tobchat/internal/models"
)

// Agent providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// AgentConfig is the server-side configuration of the chat agent
type AgentConfig struct {
	OpenAIAPIKey string  `json:"openai_api_key,omitempty"`
	GoogleAPIKey string  `json:"google_api_key,omitempty"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model,omitempty"`
	Temperature  float64 `json:"temperature"`
	RAGEnabled   bool    `json:"rag_enabled"`
	MaxTokens    int     `json:"max_tokens"`
	Port         int     `json:"port"`
}

// DefaultAgentConfig returns the agent defaults
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Provider:    ProviderGemini,
		Temperature: models.DefaultTemperature,
		RAGEnabled:  true,
		MaxTokens:   models.DefaultMaxTokens,
		Port:        8080,
	}
}

// LoadAgentConfig reads the agent configuration from the environment
func LoadAgentConfig() (AgentConfig, error) {
	return loadAgentConfig(os.Getenv)
}

func loadAgentConfig(getenv func(string) string) (AgentConfig, error) {
	cfg := DefaultAgentConfig()

	cfg.OpenAIAPIKey = getenv("OPENAI_API_KEY")
	cfg.GoogleAPIKey = getenv("GOOGLE_GENERATIVE_AI_API_KEY")

	if p := strings.ToLower(strings.TrimSpace(getenv("PROVIDER"))); p != "" {
		cfg.Provider = p
	} else if cfg.GoogleAPIKey == "" && cfg.OpenAIAPIKey != "" {
		cfg.Provider = ProviderOpenAI
	}
	cfg.Model = getenv("MODEL")

	if v := getenv("TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid TEMPERATURE %q: %w", v, err)
		}
		cfg.Temperature = t
	}

	cfg.RAGEnabled = strings.ToLower(getenv("RAG_ENABLED")) != "false"

	if v := getenv("MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid MAX_TOKENS %q: %w", v, err)
		}
		cfg.MaxTokens = n
	}

	if v := getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = n
	}

	return cfg, nil
}

// ResolvedModel returns the configured model or the provider default
func (c AgentConfig) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	if c.Provider == ProviderOpenAI {
		return models.DefaultOpenAIModel
	}
	return models.DefaultModel
}

// Addr returns the listen address
func (c AgentConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks ranges and that the chosen provider has its key
func (c AgentConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 1 {
		return apierrors.NewChatbotError(fmt.Sprintf("temperature must be between 0 and 1, got %v", c.Temperature), apierrors.CodeMissingConfig, 500, nil)
	}
	if c.MaxTokens < 1 {
		return apierrors.NewChatbotError(fmt.Sprintf("max tokens must be at least 1, got %d", c.MaxTokens), apierrors.CodeMissingConfig, 500, nil)
	}
	if c.Port < 1 || c.Port > 65535 {
		return apierrors.NewChatbotError(fmt.Sprintf("invalid port %d", c.Port), apierrors.CodeMissingConfig, 500, nil)
	}

	switch c.Provider {
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return apierrors.NewChatbotError("Google Generative AI API key is required", apierrors.CodeMissingConfig, 500, nil)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return apierrors.NewChatbotError("OpenAI API key is required", apierrors.CodeMissingConfig, 500, nil)
		}
	case ProviderMock:
	default:
		return apierrors.NewChatbotError(fmt.Sprintf("unknown provider %q", c.Provider), apierrors.CodeMissingConfig, 500, nil)
	}
	return nil
}

// AvailableProviders returns the supported agent providers
func AvailableProviders() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderMock}
}

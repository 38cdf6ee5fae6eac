package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/automationvault/internal/config"
)

// NewClient builds the client for the configured provider using model, or
// cfg.Model when model is empty. A provider that needs a key but has none
// yields an Unconfigured client so callers fail per request, not at startup.
func NewClient(ctx context.Context, cfg config.LLMConfig, model string, log *zap.Logger) (LLMClient, error) {
	provider := strings.ToLower(cfg.Provider)
	if model == "" {
		model = cfg.Model
	}

	if cfg.APIKey == "" && provider != "ollama" {
		log.Warn("LLM API key not configured, generation requests will fail", zap.String("provider", provider))
		return &Unconfigured{Provider: provider}, nil
	}

	var c LLMClient
	switch provider {
	case "claude", "":
		provider = "claude"
		c = NewClaudeClient(cfg.APIKey, model, cfg.BaseURL)

	case "openai":
		c = NewOpenAIClient(cfg.APIKey, model, cfg.BaseURL)

	case "gemini":
		gc, err := NewGeminiClient(ctx, cfg.APIKey, model)
		if err != nil {
			return nil, err
		}
		c = gc

	case "ollama":
		// Ollama speaks the OpenAI chat completions protocol under /v1.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		oc := NewOpenAIClient(apiKey, model, baseURL)
		oc.service = "ollama"
		c = oc
		log.Info("Initializing Ollama via OpenAI-compatible API", zap.String("base_url", baseURL))

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}

	return NewInstrumented(provider, c), nil
}

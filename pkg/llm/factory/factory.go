package factory

import (
	"fmt"
	"time"

	"genai-chatbot-be/pkg/llm"
	"genai-chatbot-be/pkg/llm/gemini"
	"genai-chatbot-be/pkg/llm/huggingface"
	"genai-chatbot-be/pkg/llm/ollama"
	"genai-chatbot-be/pkg/llm/openai"
)

// Config selects and configures the generation backend.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "ollama":
		return ollama.NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "openai":
		return openai.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

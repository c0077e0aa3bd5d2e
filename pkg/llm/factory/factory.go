package factory

import (
	"fmt"

	"github.com/CustomGPTer/RAMS-Generator/pkg/llm"
	"github.com/CustomGPTer/RAMS-Generator/pkg/llm/ollama"
	"github.com/CustomGPTer/RAMS-Generator/pkg/llm/openai"
)

// ProviderConfig selects and configures one LLM backend.
type ProviderConfig struct {
	Provider      string // "openai" or "ollama"
	Model         string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaBaseURL string
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "openai", "":
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return openai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

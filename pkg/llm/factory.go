package llm

import (
	"fmt"

	"github.com/dimslaev/spaider/pkg/config"
	"github.com/dimslaev/spaider/pkg/utils"
)

// NewBackend builds the provider backend named by cfg, without retries.
func NewBackend(cfg *config.Config) (Backend, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIBackend(OpenAIConfig{
			BaseURL:           cfg.BaseURL,
			APIKey:            cfg.APIKey,
			StructuredOutputs: cfg.StructuredOutputs,
		}), nil
	case config.ProviderOllama:
		return NewOllamaBackend(cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// NewClientFromConfig wires a retrying backend and a Client from cfg.
func NewClientFromConfig(cfg *config.Config, logger *utils.Logger) (*Client, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	opts := DefaultRetryOptions()
	opts.MaxRetries = cfg.MaxRetries
	opts.Timeout = cfg.Timeout()

	return NewClient(WithRetry(backend, opts, logger), Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, logger), nil
}

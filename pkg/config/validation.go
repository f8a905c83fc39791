package config

import (
	"github.com/dimslaev/spaider/pkg/utils"
)

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return utils.NewValidationError("provider", "must be one of openai, ollama")
	}

	if c.Model == "" {
		return utils.NewValidationError("model", "cannot be empty")
	}

	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return utils.NewValidationError("temperature", "must be between 0.0 and 2.0")
	}

	if c.MaxTokens < 1 {
		return utils.NewValidationError("max_tokens", "must be positive")
	}

	if c.TimeoutSeconds < 1 {
		return utils.NewValidationError("timeout_seconds", "must be positive")
	}

	if c.MaxRetries < 0 {
		return utils.NewValidationError("max_retries", "cannot be negative")
	}

	if c.PreviewLines < 1 || c.PlanPreviewLines < 1 {
		return utils.NewValidationError("preview_lines", "must be positive")
	}

	if c.MaxTermMatches < 1 {
		return utils.NewValidationError("max_term_matches", "must be positive")
	}

	if c.ApplyParallelism < 1 {
		return utils.NewValidationError("apply_parallelism", "must be at least 1")
	}

	return nil
}

// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	// LLM Configuration
	LLMKey     string
	LLMBaseURL string
	ChatModel  string

	// Embedding Configuration. Empty key and URL fall back to the LLM values.
	EmbeddingKey     string
	EmbeddingBaseURL string
	EmbeddingModel   string

	// Performance Configuration
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Model Parameters
	Temperature float32
	TopP        float32
}

func (c *Config) Validate() error {
	if c.LLMBaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("CHAT_MODEL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p must be between 0 and 1")
	}
	return nil
}

// DefaultConfig targets a local Ollama server through its OpenAI-compatible API.
func DefaultConfig() *Config {
	return &Config{
		LLMKey:         "ollama",
		LLMBaseURL:     "http://localhost:11434/v1",
		ChatModel:      "gemma3:4b-it-q4_K_M",
		EmbeddingModel: "nomic-embed-text",
		Timeout:        5 * time.Minute,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
		Temperature:    0.1,
		TopP:           0.9,
	}
}

func (c *Config) embeddingKey() string {
	if c.EmbeddingKey != "" {
		return c.EmbeddingKey
	}
	return c.LLMKey
}

func (c *Config) embeddingBaseURL() string {
	if c.EmbeddingBaseURL != "" {
		return c.EmbeddingBaseURL
	}
	return c.LLMBaseURL
}

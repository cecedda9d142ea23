// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// RAG Configuration
	RAGEnabled       bool // Merge vector index matches into the user turn
	RetrievalTopK    int  // Number of similar chunks to retrieve
	ContextMaxTokens int  // Maximum tokens for retrieved context

	// Prompt Configuration
	SystemPrompt  string // Prepended to every request when set
	HistoryWindow int    // Records replayed per request; 0 uses the memory default
	MaxInputRunes int    // Longest accepted user message

	// Performance Configuration
	ModelTimeout   time.Duration // Bound on one model call
	IndexTimeout   time.Duration // Bound on one vector index search
	PersistTimeout time.Duration // Bound on writing the assistant record
	StreamBuffer   int           // Token channel capacity

	// Failure handling
	RetainUserTurnOnFailure bool // Keep the user record when the model fails
	EnableSources           bool // Report source files of retrieved chunks
	MaxSources              int  // Maximum number of sources to report
}

func (c *Config) Validate() error {
	if c.RetrievalTopK <= 0 {
		return fmt.Errorf("retrieval_top_k must be positive")
	}
	if c.RetrievalTopK > 20 {
		return fmt.Errorf("retrieval_top_k cannot exceed 20")
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("history_window cannot be negative")
	}
	if c.MaxInputRunes <= 0 {
		return fmt.Errorf("max_input_runes must be positive")
	}
	if c.ModelTimeout <= 0 || c.IndexTimeout <= 0 || c.PersistTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.StreamBuffer < 0 {
		return fmt.Errorf("stream_buffer cannot be negative")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		RAGEnabled:       false,
		RetrievalTopK:    4,
		ContextMaxTokens: 4000,
		MaxInputRunes:    8000,
		ModelTimeout:     5 * time.Minute,
		IndexTimeout:     30 * time.Second,
		PersistTimeout:   5 * time.Second,
		StreamBuffer:     16,
		EnableSources:    true,
		MaxSources:       10,
	}
}

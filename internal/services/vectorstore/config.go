// File: internal/services/vectorstore/config.go
package vectorstore

import (
	"errors"
	"time"
)

const (
	BackendMemory   = "memory"
	BackendPinecone = "pinecone"
)

type Config struct {
	Backend string

	// Pinecone connection settings
	APIKey    string
	IndexHost string
	Namespace string

	// Operation settings
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration

	// Number of chunks embedded and upserted per request
	BatchSize int
}

func DefaultConfig() *Config {
	return &Config{
		Backend:    BackendMemory,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
		BatchSize:  64,
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendPinecone:
		if c.IndexHost == "" {
			return errors.New("pinecone index host is required")
		}
		if c.APIKey == "" {
			return errors.New("pinecone API key is required")
		}
	default:
		return errors.New("vector store backend must be memory or pinecone")
	}

	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}
	return nil
}

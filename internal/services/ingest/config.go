// File: internal/services/ingest/config.go
package ingest

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Dir        string   // Knowledge base root
	Extensions []string // Accepted file extensions, with dot
	ChunkSize  int      // Whitespace tokens per chunk
	FailFast   bool     // Stop at the first failing document

	// ReindexKnown re-sends versions already in the ledger to the vector
	// index once per process, without writing new entries. Needed when the
	// index does not outlive the process.
	ReindexKnown bool

	// Watcher
	Watch          bool
	DebounceWindow time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Dir:            "knowledgebase",
		Extensions:     []string{".txt", ".md"},
		ChunkSize:      500,
		DebounceWindow: 500 * time.Millisecond,
	}
}

func (c *Config) Validate() error {
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be at least 1")
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("at least one file extension is required")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	if c.Watch && c.DebounceWindow <= 0 {
		return fmt.Errorf("debounce window must be positive")
	}
	return nil
}

func (c *Config) accepts(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range c.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

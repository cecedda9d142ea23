// File: internal/services/memory/config.go
package memory

import "fmt"

const (
	// WindowOldest keeps the first N messages of the ascending history.
	WindowOldest = "oldest"
	// WindowRecent keeps the last N messages, still returned oldest first.
	WindowRecent = "recent"
)

type Config struct {
	MaxMessages  int
	WindowPolicy string
	ClearEnabled bool
}

func DefaultConfig() *Config {
	return &Config{
		MaxMessages:  12,
		WindowPolicy: WindowOldest,
	}
}

func (c *Config) Validate() error {
	if c.MaxMessages < 1 {
		return fmt.Errorf("max messages must be at least 1")
	}
	if c.WindowPolicy != WindowOldest && c.WindowPolicy != WindowRecent {
		return fmt.Errorf("window policy must be %q or %q", WindowOldest, WindowRecent)
	}
	return nil
}

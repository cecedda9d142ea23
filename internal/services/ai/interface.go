// File: internal/services/ai/interface.go
package ai

import "context"

// Message is one entry of a chat completion request.
type Message struct {
	Role    string
	Content string
}

// ProviderStatus represents AI provider health
type ProviderStatus struct {
	IsHealthy        bool
	EmbeddingHealthy bool
	LLMHealthy       bool
	Message          string
}

// EmbeddingProvider handles text embeddings
type EmbeddingProvider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionProvider handles chat completions. StreamCompletion calls onDelta
// for every non-empty fragment in arrival order and returns nil once the
// stream ends normally.
type CompletionProvider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	StreamCompletion(ctx context.Context, messages []Message, onDelta func(string) error) error
}

// Provider combines embedding and completion capabilities
type Provider interface {
	EmbeddingProvider
	CompletionProvider
	GetStatus(ctx context.Context) ProviderStatus
}

// Logger is the narrow logging surface the provider needs.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

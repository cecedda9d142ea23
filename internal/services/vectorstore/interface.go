// File: internal/services/vectorstore/interface.go
package vectorstore

import "context"

// Chunk is one piece of document text submitted for indexing.
type Chunk struct {
	ID       string
	Text     string
	Source   string
	Metadata map[string]string
}

// Match is a search hit, best first.
type Match struct {
	ID     string
	Text   string
	Source string
	Score  float32
}

// Index stores chunks for similarity search.
type Index interface {
	Add(ctx context.Context, chunks []Chunk) error
	Search(ctx context.Context, query string, topK int) ([]Match, error)
}

// Embedder turns text into vectors. ai.OpenAIProvider satisfies it.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// ServiceStatus represents vector index health
type ServiceStatus struct {
	IsHealthy   bool
	Backend     string
	VectorCount uint32
	Message     string
	Namespace   string
}

// Logger interface for vector index operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

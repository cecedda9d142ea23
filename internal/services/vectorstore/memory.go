// File: internal/services/vectorstore/memory.go
package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

type memoryEntry struct {
	chunk  Chunk
	vector []float32
}

// MemoryIndex is an in-process cosine-similarity index. Contents are lost on
// restart.
type MemoryIndex struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	embedder Embedder
	config   *Config
	logger   Logger
}

func NewMemoryIndex(config *Config, embedder Embedder, logger Logger) *MemoryIndex {
	if config == nil {
		config = DefaultConfig()
	}
	return &MemoryIndex{
		entries:  make(map[string]memoryEntry),
		embedder: embedder,
		config:   config,
		logger:   logger,
	}
}

// Add embeds and stores chunks. A chunk with a known ID replaces the old one.
func (m *MemoryIndex) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := embedChunks(ctx, m.embedder, chunks, m.config.BatchSize)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range chunks {
		m.entries[c.ID] = memoryEntry{chunk: c, vector: vectors[i]}
	}

	m.logger.Debug("chunks indexed", "count", len(chunks), "total", len(m.entries))
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if topK <= 0 {
		return []Match{}, nil
	}

	embedding, err := m.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, NewOperationError("embedding query", err)
	}

	m.mu.RLock()
	matches := make([]Match, 0, len(m.entries))
	for _, e := range m.entries {
		matches = append(matches, Match{
			ID:     e.chunk.ID,
			Text:   e.chunk.Text,
			Source: e.chunk.Source,
			Score:  float32(cosineSimilarity(embedding, e.vector)),
		})
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryIndex) GetStatus(ctx context.Context) ServiceStatus {
	return ServiceStatus{
		IsHealthy:   true,
		Backend:     BackendMemory,
		VectorCount: uint32(m.Len()),
		Message:     "in-memory index",
	}
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

package vectorstore

import (
	"context"
	"fmt"
)

// embedChunks embeds chunk texts batchSize at a time. The result is
// index-aligned with chunks.
func embedChunks(ctx context.Context, embedder Embedder, chunks []Chunk, batchSize int) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := embedder.CreateEmbeddings(ctx, texts)
		if err != nil {
			return nil, NewOperationError(fmt.Sprintf("embedding chunks %d-%d", start, end-1), err)
		}
		if len(batch) != len(texts) {
			return nil, NewOperationError("embedding count mismatch", nil)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

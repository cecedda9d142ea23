package ingest

import "strings"

// TokenSplitter cuts text into chunks of at most ChunkSize whitespace tokens.
// Only the last chunk may be shorter.
type TokenSplitter struct {
	ChunkSize int
}

func NewTokenSplitter(chunkSize int) *TokenSplitter {
	if chunkSize < 1 {
		chunkSize = 1
	}
	return &TokenSplitter{ChunkSize: chunkSize}
}

// Split returns no chunks for blank input.
func (s *TokenSplitter) Split(text string) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(tokens)+s.ChunkSize-1)/s.ChunkSize)
	for start := 0; start < len(tokens); start += s.ChunkSize {
		end := start + s.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[start:end], " "))
	}
	return chunks
}

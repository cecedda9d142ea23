// File: internal/services/chat/rag.go
package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iyunix/go-ragchat/internal/services/vectorstore"
)

// RAGService turns vector index matches into prompt context.
type RAGService struct {
	config *Config
	logger Logger
}

func NewRAGService(config *Config, logger Logger) *RAGService {
	return &RAGService{
		config: config,
		logger: logger,
	}
}

// BuildContext renders matches best first, one block per chunk, and stops
// once the configured token budget is spent.
func (r *RAGService) BuildContext(matches []vectorstore.Match) string {
	sorted := make([]vectorstore.Match, 0, len(matches))
	for _, m := range matches {
		if strings.TrimSpace(m.Text) != "" {
			sorted = append(sorted, m)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	budget := r.config.ContextMaxTokens * 4
	var b strings.Builder
	for i, m := range sorted {
		block := SanitizeForPrompt(strings.TrimSpace(m.Text))
		if i > 0 {
			block = "\n\n" + block
		}
		if budget > 0 && b.Len()+len(block) > budget {
			r.logger.Info("truncating context for token limits",
				"kept_chunks", i,
				"max_tokens", r.config.ContextMaxTokens)
			break
		}
		b.WriteString(block)
	}

	r.logger.Debug("RAG context built", "matches_count", len(matches), "length", b.Len())
	return b.String()
}

// BuildPrompt wraps the question with retrieved context and asks the model to
// answer from that context alone.
func (r *RAGService) BuildPrompt(context, question string) string {
	if strings.TrimSpace(context) == "" {
		return question
	}

	return fmt.Sprintf(`%s

Context:
---------------------
%s
---------------------

Answer only from the context above. If the context does not contain the answer, say that you cannot answer.`,
		question, context)
}

// ExtractSources returns the distinct source files behind the matches, best
// match first.
func (r *RAGService) ExtractSources(matches []vectorstore.Match) []string {
	var sources []string
	seen := make(map[string]bool)

	for _, m := range matches {
		title := CleanFilename(m.Source)
		if title == "" {
			title = m.ID
		}
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true
		sources = append(sources, title)

		if r.config.MaxSources > 0 && len(sources) >= r.config.MaxSources {
			break
		}
	}
	return sources
}

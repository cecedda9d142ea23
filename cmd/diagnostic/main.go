// File: cmd/diagnostic/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/iyunix/go-ragchat/internal/config"
	"github.com/iyunix/go-ragchat/internal/services"
	"github.com/iyunix/go-ragchat/internal/services/ai"
	"github.com/iyunix/go-ragchat/internal/services/vectorstore"
)

type statusReporter interface {
	GetStatus(ctx context.Context) vectorstore.ServiceStatus
}

func main() {
	query := flag.String("query", "What is the capital of Sweden?", "question used for the search timing runs")
	runs := flag.Int("runs", 5, "number of timed search runs")
	topK := flag.Int("topk", 4, "matches requested per search")
	flag.Parse()

	log.Println("--- Running model and vector index diagnostics ---")

	cfg := config.Load()
	logger := &services.NoOpLogger{}
	ctx := context.Background()

	// --- 1. Model endpoint ---
	provider, err := ai.NewOpenAIProvider(cfg.AI(), logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize model provider: %v", err)
	}

	status := provider.GetStatus(ctx)
	log.Printf("[MODEL] base=%s chat=%s embedding=%s healthy=%t (%s)",
		cfg.LLMBaseURL, cfg.ChatModel, cfg.EmbeddingModel, status.IsHealthy, status.Message)

	start := time.Now()
	reply, err := provider.Complete(ctx, []ai.Message{{Role: "user", Content: "Reply with the single word: ready"}})
	if err != nil {
		log.Printf("[MODEL] ❌ completion failed: %v", err)
	} else {
		log.Printf("[TIMING] ✅ completion took %s: %q", time.Since(start), reply)
	}

	// --- 2. Vector index ---
	index, err := vectorstore.New(cfg.VectorStoreConfig(), provider, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize vector index: %v", err)
	}
	if r, ok := index.(statusReporter); ok {
		s := r.GetStatus(ctx)
		log.Printf("[INDEX] backend=%s namespace=%q vectors=%d healthy=%t (%s)",
			s.Backend, s.Namespace, s.VectorCount, s.IsHealthy, s.Message)
	}

	// --- 3. Search timing ---
	var total time.Duration
	var succeeded int
	log.Printf("[INFO] Running %d searches with topK=%d for %q", *runs, *topK, *query)
	for i := 1; i <= *runs; i++ {
		start := time.Now()
		matches, err := index.Search(ctx, *query, *topK)
		if err != nil {
			log.Printf("ERROR: search run #%d failed: %v", i, err)
			continue
		}
		elapsed := time.Since(start)
		total += elapsed
		succeeded++
		log.Printf("[TIMING] search run #%d took %s (found %d matches)", i, elapsed, len(matches))
	}

	log.Printf("--- Summary ---")
	if succeeded > 0 {
		log.Printf("Average search latency over %d runs: %s", succeeded, total/time.Duration(succeeded))
	} else {
		log.Printf("No search succeeded")
	}
}

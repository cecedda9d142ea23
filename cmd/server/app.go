// File: cmd/server/app.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"gorm.io/gorm"

	"github.com/iyunix/go-ragchat/internal/config"
	"github.com/iyunix/go-ragchat/internal/database"
	"github.com/iyunix/go-ragchat/internal/handlers"
	"github.com/iyunix/go-ragchat/internal/ratelimit"
	"github.com/iyunix/go-ragchat/internal/repository"
	"github.com/iyunix/go-ragchat/internal/services"
	"github.com/iyunix/go-ragchat/internal/services/ai"
	chatservice "github.com/iyunix/go-ragchat/internal/services/chat"
	"github.com/iyunix/go-ragchat/internal/services/ingest"
	"github.com/iyunix/go-ragchat/internal/services/memory"
	"github.com/iyunix/go-ragchat/internal/services/vectorstore"
)

// application aggregates the long-lived components
type application struct {
	config   *config.Config
	logger   services.Logger
	db       *gorm.DB
	index    vectorstore.Index
	pipeline *ingest.Pipeline
	limiter  *ratelimit.MemoryRateLimiter
	handler  http.Handler
}

func newApplication(cfg *config.Config) (*application, error) {
	logger := services.NewProductionLogger(os.Stdout, "ragchat", services.ParseLogLevel(cfg.LogLevel), cfg.IsProduction())
	services.InstallDefault(logger)
	component := func(name string) services.Logger {
		return logger.With("component", name)
	}

	db, err := database.Open(cfg.Database())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	store := repository.NewStore(db)

	provider, err := ai.NewOpenAIProvider(cfg.AI(), component("ai"))
	if err != nil {
		return nil, fmt.Errorf("ai provider: %w", err)
	}

	indexConfig := cfg.VectorStoreConfig()
	index, err := vectorstore.New(indexConfig, provider, component("vectorstore"))
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}

	mem, err := memory.NewChatMemory(store, cfg.Memory(), component("memory"))
	if err != nil {
		return nil, fmt.Errorf("chat memory: %w", err)
	}

	chatLogger := component("chat")
	interaction, err := chatservice.NewInteractionService(cfg.Chat(), store, mem, provider, index, chatLogger)
	if err != nil {
		return nil, fmt.Errorf("interaction service: %w", err)
	}
	chatService, err := services.NewChatService(store, mem, interaction, chatLogger)
	if err != nil {
		return nil, fmt.Errorf("chat service: %w", err)
	}

	ingestConfig := cfg.Ingest()
	ingestConfig.ReindexKnown = indexConfig.Backend == vectorstore.BackendMemory
	pipeline, err := ingest.NewPipeline(store.Documents, index, ingestConfig, component("ingest"))
	if err != nil {
		return nil, fmt.Errorf("ingest pipeline: %w", err)
	}

	chatHandler, err := handlers.NewChatHandler(chatService, chatLogger)
	if err != nil {
		return nil, fmt.Errorf("chat handler: %w", err)
	}
	pageHandler := handlers.NewPageHandler(chatService, chatLogger)

	var limiter *ratelimit.MemoryRateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = ratelimit.NewMemoryRateLimiter(ratelimit.InteractionConfig(cfg.RateLimitPerMinute))
	}

	return &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		index:    index,
		pipeline: pipeline,
		limiter:  limiter,
		handler:  handlers.NewRouter(chatHandler, pageHandler, limiter),
	}, nil
}

// ingestKnowledgeBase runs once at start-up. Failures are logged, not fatal.
func (a *application) ingestKnowledgeBase(ctx context.Context) {
	report, err := a.pipeline.IngestDirectory(ctx)
	if err != nil {
		a.logger.Error("knowledge base ingestion finished with errors", "error", err)
	}
	if report != nil {
		a.logger.Info("knowledge base ready",
			"ingested", len(report.Ingested),
			"skipped", len(report.Skipped),
			"reindexed", len(report.Reindexed),
			"failed", len(report.Failed))
	}
}

// watchKnowledgeBase blocks until ctx is done.
func (a *application) watchKnowledgeBase(ctx context.Context) {
	if !a.config.WatchKnowledgeBase {
		return
	}
	if err := os.MkdirAll(a.config.KnowledgeBaseDir, 0o755); err != nil {
		a.logger.Error("cannot create knowledge base directory", "dir", a.config.KnowledgeBaseDir, "error", err)
		return
	}
	watcher, err := ingest.NewWatcher(a.pipeline)
	if err != nil {
		a.logger.Error("knowledge base watcher failed to start", "error", err)
		return
	}
	if err := watcher.Run(ctx); err != nil {
		a.logger.Error("knowledge base watcher stopped", "error", err)
	}
}

func (a *application) Close() {
	if a.limiter != nil {
		a.limiter.Close()
	}
	if closer, ok := a.index.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Warn("closing vector index", "error", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

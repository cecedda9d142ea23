// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-ragchat/internal/config"
)

func main() {
	cfg := config.Load()

	app, err := newApplication(cfg)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mirrors a start-up runner: the knowledge base is indexed before
	// requests are served.
	app.ingestKnowledgeBase(ctx)
	go app.watchKnowledgeBase(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		app.logger.Info("server starting", "addr", srv.Addr, "chat", "http://localhost"+srv.Addr+"/")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	app.logger.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		return
	}
	app.logger.Info("server stopped gracefully")
}

// File: internal/services/ingest/watcher.go
package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-ingests knowledge-base files when they are created or
// modified. Bursts of events for the same file are coalesced over the
// debounce window.
type Watcher struct {
	pipeline *Pipeline
	fsw      *fsnotify.Watcher
	root     string
	config   *Config
	logger   Logger

	// processed is signalled after every flush; nil outside tests.
	processed chan<- *Report
}

// NewWatcher subscribes to the knowledge base directory tree. Call Run to
// start processing events.
func NewWatcher(pipeline *Pipeline) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		pipeline: pipeline,
		fsw:      fsw,
		root:     pipeline.config.Dir,
		config:   pipeline.config,
		logger:   pipeline.logger,
	}
	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Run blocks until ctx is done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	w.logger.Info("watching knowledge base", "dir", w.root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if event.Has(fsnotify.Create) {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
				continue
			}
			if !w.config.accepts(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.config.DebounceWindow)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			w.flush(ctx, pending)
			pending = make(map[string]struct{})
		}
	}
}

func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		doc, err := LoadFile(w.root, path)
		if err != nil {
			// Removed or renamed before the window closed.
			w.logger.Debug("changed file no longer readable", "path", path, "error", err)
			continue
		}
		docs = append(docs, doc)
	}

	report, err := w.pipeline.IngestAll(ctx, docs)
	if err != nil {
		w.logger.Error("re-ingestion failed", "error", err)
	}
	if w.processed != nil {
		select {
		case w.processed <- report:
		case <-ctx.Done():
		}
	}
}

package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-ragchat/internal/database/dbtest"
	"github.com/iyunix/go-ragchat/internal/domain"
	"github.com/iyunix/go-ragchat/internal/repository/document"
	"github.com/iyunix/go-ragchat/internal/services/vectorstore"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type recordingIndex struct {
	mu     sync.Mutex
	calls  int
	chunks []vectorstore.Chunk
	err    error
}

func (r *recordingIndex) Add(_ context.Context, chunks []vectorstore.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *recordingIndex) Search(context.Context, string, int) ([]vectorstore.Match, error) {
	return nil, nil
}

func (r *recordingIndex) addCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "word"
	}
	return strings.Join(parts, " ")
}

func newTestPipeline(t *testing.T, cfg *Config) (*Pipeline, document.DocumentRepository, *recordingIndex) {
	t.Helper()
	ledger := document.NewDocumentRepository(dbtest.New(t))
	index := &recordingIndex{}
	p, err := NewPipeline(ledger, index, cfg, nopLogger{})
	require.NoError(t, err)
	return p, ledger, index
}

func TestIngestAllSkipsUnchangedDocuments(t *testing.T) {
	ctx := context.Background()
	p, ledger, index := newTestPipeline(t, nil)
	docs := []Document{{Filename: "sweden.txt", Content: []byte("The capital of Sweden is Stockholm.")}}

	report, err := p.IngestAll(ctx, docs)
	require.NoError(t, err)
	require.Len(t, report.Ingested, 1)
	assert.Equal(t, 1, index.addCalls())

	report, err = p.IngestAll(ctx, docs)
	require.NoError(t, err)
	assert.Empty(t, report.Ingested)
	assert.Equal(t, []string{"sweden.txt"}, report.Skipped)
	assert.Equal(t, 1, index.addCalls())

	total, err := ledger.CountTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestIngestAllReindexesChangedContent(t *testing.T) {
	ctx := context.Background()
	p, ledger, index := newTestPipeline(t, nil)

	_, err := p.IngestAll(ctx, []Document{{Filename: "a.txt", Content: []byte("version one")}})
	require.NoError(t, err)
	_, err = p.IngestAll(ctx, []Document{{Filename: "a.txt", Content: []byte("version onE")}})
	require.NoError(t, err)

	assert.Equal(t, 2, index.addCalls())
	versions, err := ledger.FindByFilename(ctx, "a.txt")
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestIngestAllChunksBySize(t *testing.T) {
	ctx := context.Background()
	p, ledger, index := newTestPipeline(t, nil)

	report, err := p.IngestAll(ctx, []Document{{Filename: "long.txt", Content: []byte(words(1200))}})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Chunks())

	require.Len(t, index.chunks, 3)
	assert.Len(t, strings.Fields(index.chunks[0].Text), 500)
	assert.Len(t, strings.Fields(index.chunks[1].Text), 500)
	assert.Len(t, strings.Fields(index.chunks[2].Text), 200)
	for i, c := range index.chunks {
		assert.Equal(t, "long.txt", c.Source)
		assert.Equal(t, "txt", c.Metadata["document_type"])
		assert.Equal(t, ChunkID("long.txt", Fingerprint([]byte(words(1200))), i), c.ID)
	}

	entries, err := ledger.FindByFilename(ctx, "long.txt")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 3, entries[0].ChunkCount)
	assert.Equal(t, "txt", entries[0].DocumentType)
}

func TestIngestAllIndexFailureLeavesNoLedgerEntry(t *testing.T) {
	ctx := context.Background()
	p, ledger, index := newTestPipeline(t, nil)
	index.err = errors.New("index offline")

	docs := []Document{
		{Filename: "a.txt", Content: []byte("alpha")},
		{Filename: "b.txt", Content: []byte("beta")},
	}
	report, err := p.IngestAll(ctx, docs)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexingFailure)

	var docErr *DocumentError
	require.ErrorAs(t, err, &docErr)
	assert.Equal(t, "a.txt", docErr.Filename)

	// Continue-on-error: both were attempted.
	assert.Equal(t, []string{"a.txt", "b.txt"}, report.Failed)
	total, err := ledger.CountTotal(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	// Once the index recovers the same documents go through.
	index.err = nil
	report, err = p.IngestAll(ctx, docs)
	require.NoError(t, err)
	assert.Len(t, report.Ingested, 2)
}

func TestIngestAllFailFast(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailFast = true
	p, _, index := newTestPipeline(t, cfg)
	index.err = errors.New("index offline")

	report, err := p.IngestAll(context.Background(), []Document{
		{Filename: "a.txt", Content: []byte("alpha")},
		{Filename: "b.txt", Content: []byte("beta")},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"a.txt"}, report.Failed)
	assert.Equal(t, 1, index.addCalls())
}

func TestIngestAllEmptyDocument(t *testing.T) {
	ctx := context.Background()
	p, ledger, index := newTestPipeline(t, nil)

	report, err := p.IngestAll(ctx, []Document{{Filename: "empty.md", Content: []byte("  \n")}})
	require.NoError(t, err)
	require.Len(t, report.Ingested, 1)
	assert.Zero(t, report.Ingested[0].ChunkCount)
	assert.Zero(t, index.addCalls())

	exists, err := ledger.ExistsByFilenameAndContentHash(ctx, "empty.md", Fingerprint([]byte("  \n")))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Fingerprint(nil))
	assert.NotEqual(t, Fingerprint([]byte("abc")), Fingerprint([]byte("abd")))
}

func TestIngestDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.md"), []byte("# Beta"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.pdf"), []byte("%PDF"), 0o644))

	cfg := DefaultConfig()
	cfg.Dir = dir
	p, _, index := newTestPipeline(t, cfg)

	report, err := p.IngestDirectory(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Ingested, 2)
	assert.Equal(t, "a.txt", report.Ingested[0].Filename)
	assert.Equal(t, "nested/b.md", report.Ingested[1].Filename)
	assert.Equal(t, "Beta", index.chunks[1].Text)
}

func TestLoadDirectoryMissing(t *testing.T) {
	docs, err := LoadDirectory(filepath.Join(t.TempDir(), "absent"), DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestWatcherReingestsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Dir = dir
	cfg.Watch = true
	cfg.DebounceWindow = 20 * time.Millisecond
	p, ledger, _ := newTestPipeline(t, cfg)

	w, err := NewWatcher(p)
	require.NoError(t, err)
	processed := make(chan *Report, 4)
	w.processed = processed

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("first draft"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.bin"), []byte("x"), 0o644))

	hash := Fingerprint([]byte("first draft"))
	deadline := time.After(5 * time.Second)
	for {
		select {
		case report := <-processed:
			require.NotNil(t, report)
			for _, entry := range report.Ingested {
				assert.Equal(t, "notes.txt", entry.Filename)
			}
		case <-deadline:
			t.Fatal("watcher did not re-ingest")
		}

		exists, err := ledger.ExistsByFilenameAndContentHash(context.Background(), "notes.txt", hash)
		require.NoError(t, err)
		if exists {
			return
		}
	}
}

func TestIngestAllReindexKnown(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.ReindexKnown = true
	first, ledger, _ := newTestPipeline(t, cfg)
	docs := []Document{{Filename: "a.txt", Content: []byte("alpha beta")}}

	_, err := first.IngestAll(ctx, docs)
	require.NoError(t, err)

	// A restarted process keeps the ledger but starts with an empty index.
	index := &recordingIndex{}
	restarted, err := NewPipeline(ledger, index, cfg, nopLogger{})
	require.NoError(t, err)

	report, err := restarted.IngestAll(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, report.Reindexed)
	require.Len(t, index.chunks, 1)
	assert.Equal(t, ChunkID("a.txt", Fingerprint(docs[0].Content), 0), index.chunks[0].ID)

	report, err = restarted.IngestAll(ctx, docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, report.Skipped)
	assert.Empty(t, report.Reindexed)
	assert.Equal(t, 1, index.addCalls())

	total, err := ledger.CountTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestIngestAllReindexKnownIndexesOnce(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.ReindexKnown = true
	p, _, index := newTestPipeline(t, cfg)
	docs := []Document{{Filename: "long.txt", Content: []byte(words(1200))}}

	_, err := p.IngestAll(ctx, docs)
	require.NoError(t, err)
	_, err = p.IngestAll(ctx, docs)
	require.NoError(t, err)

	assert.Equal(t, 1, index.addCalls())
	assert.Len(t, index.chunks, 3)
}

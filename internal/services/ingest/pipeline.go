// File: internal/services/ingest/pipeline.go
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/iyunix/go-ragchat/internal/domain"
	"github.com/iyunix/go-ragchat/internal/repository/document"
	"github.com/iyunix/go-ragchat/internal/services/vectorstore"
)

// chunkNamespace scopes the deterministic chunk ids.
var chunkNamespace = uuid.MustParse("6f1c2a4e-8d2b-4c55-9a7e-3b1f0d9e5a21")

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// DocumentError ties a failure to the file that caused it.
type DocumentError struct {
	Filename string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Filename, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Report summarises one IngestAll run.
type Report struct {
	Ingested  []domain.LoadedDocument
	Reindexed []string
	Skipped   []string
	Failed    []string
}

// Chunks is the number of chunks indexed during the run.
func (r *Report) Chunks() int {
	total := 0
	for _, d := range r.Ingested {
		total += d.ChunkCount
	}
	return total
}

// Pipeline fingerprints, chunks and indexes knowledge-base documents, and
// records each indexed version in the ledger.
type Pipeline struct {
	ledger   document.DocumentRepository
	index    vectorstore.Index
	splitter *TokenSplitter
	config   *Config
	logger   Logger

	// indexed holds the versions sent to the index by this process.
	mu      sync.Mutex
	indexed map[string]struct{}
}

func NewPipeline(ledger document.DocumentRepository, index vectorstore.Index, config *Config, logger Logger) (*Pipeline, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("ingest config: %w", err)
	}
	if ledger == nil || index == nil {
		return nil, errors.New("ingest: ledger and index are required")
	}

	return &Pipeline{
		ledger:   ledger,
		index:    index,
		splitter: NewTokenSplitter(config.ChunkSize),
		config:   config,
		logger:   logger,
		indexed:  make(map[string]struct{}),
	}, nil
}

// Fingerprint is the hex SHA-256 of the raw bytes.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// IngestAll processes every document. Unchanged documents are skipped. A
// failing document gets no ledger entry; by default the run continues and
// all failures come back joined.
func (p *Pipeline) IngestAll(ctx context.Context, docs []Document) (*Report, error) {
	report := &Report{}
	var errs []error

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		entry, result, err := p.ingestOne(ctx, doc)
		switch {
		case err != nil:
			p.logger.Error("document ingestion failed", "filename", doc.Filename, "error", err)
			report.Failed = append(report.Failed, doc.Filename)
			errs = append(errs, &DocumentError{Filename: doc.Filename, Err: err})
		case result == outcomeSkipped:
			p.logger.Debug("document unchanged, skipping", "filename", doc.Filename)
			report.Skipped = append(report.Skipped, doc.Filename)
		case result == outcomeReindexed:
			p.logger.Debug("known document re-indexed", "filename", doc.Filename)
			report.Reindexed = append(report.Reindexed, doc.Filename)
		default:
			p.logger.Info("document ingested", "filename", doc.Filename, "chunks", entry.ChunkCount)
			report.Ingested = append(report.Ingested, *entry)
		}

		if err != nil && p.config.FailFast {
			break
		}
	}

	p.logger.Info("ingestion finished",
		"ingested", len(report.Ingested),
		"skipped", len(report.Skipped),
		"reindexed", len(report.Reindexed),
		"failed", len(report.Failed),
		"chunks", report.Chunks())

	return report, errors.Join(errs...)
}

type outcome int

const (
	outcomeIngested outcome = iota
	outcomeSkipped
	outcomeReindexed
)

func (p *Pipeline) ingestOne(ctx context.Context, doc Document) (*domain.LoadedDocument, outcome, error) {
	hash := Fingerprint(doc.Content)

	exists, err := p.ledger.ExistsByFilenameAndContentHash(ctx, doc.Filename, hash)
	if err != nil {
		return nil, outcomeIngested, err
	}
	if exists && (!p.config.ReindexKnown || p.wasIndexed(doc.Filename, hash)) {
		return nil, outcomeSkipped, nil
	}

	chunks, err := p.chunk(doc, hash)
	if err != nil {
		return nil, outcomeIngested, fmt.Errorf("%w: %w", domain.ErrIndexingFailure, err)
	}
	if len(chunks) > 0 {
		if err := p.index.Add(ctx, chunks); err != nil {
			if !errors.Is(err, domain.ErrIndexingFailure) {
				err = fmt.Errorf("%w: %w", domain.ErrIndexingFailure, err)
			}
			return nil, outcomeIngested, err
		}
	}
	p.markIndexed(doc.Filename, hash)
	if exists {
		return nil, outcomeReindexed, nil
	}

	entry, err := p.ledger.Create(ctx, &domain.LoadedDocument{
		Filename:     doc.Filename,
		ContentHash:  hash,
		DocumentType: doc.Type(),
		ChunkCount:   len(chunks),
	})
	if errors.Is(err, document.ErrDuplicateDocument) {
		// Another run recorded the same version first.
		return nil, outcomeSkipped, nil
	}
	if err != nil {
		return nil, outcomeIngested, err
	}
	return entry, outcomeIngested, nil
}

func versionKey(filename, hash string) string {
	return filename + "\x00" + hash
}

func (p *Pipeline) wasIndexed(filename, hash string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.indexed[versionKey(filename, hash)]
	return ok
}

func (p *Pipeline) markIndexed(filename, hash string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.indexed[versionKey(filename, hash)] = struct{}{}
}

func (p *Pipeline) chunk(doc Document, hash string) ([]vectorstore.Chunk, error) {
	content, err := ExtractText(doc)
	if err != nil {
		return nil, err
	}
	pieces := p.splitter.Split(content)
	chunks := make([]vectorstore.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, vectorstore.Chunk{
			ID:     ChunkID(doc.Filename, hash, i),
			Text:   piece,
			Source: doc.Filename,
			Metadata: map[string]string{
				"content_hash":  hash,
				"document_type": doc.Type(),
				"chunk_index":   strconv.Itoa(i),
			},
		})
	}
	return chunks, nil
}

// ChunkID is stable for a given file version and position, so re-indexing
// the same version overwrites instead of duplicating.
func ChunkID(filename, hash string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(filename+"\x00"+hash+"\x00"+strconv.Itoa(index))).String()
}

// IngestDirectory loads the configured knowledge base and ingests it.
func (p *Pipeline) IngestDirectory(ctx context.Context) (*Report, error) {
	docs, err := LoadDirectory(p.config.Dir, p.config)
	if err != nil {
		return nil, err
	}
	p.logger.Info("knowledge base loaded", "dir", p.config.Dir, "documents", len(docs))
	return p.IngestAll(ctx, docs)
}

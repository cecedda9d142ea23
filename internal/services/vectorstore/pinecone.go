// File: internal/services/vectorstore/pinecone.go
package vectorstore

import (
	"context"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	metadataText   = "text"
	metadataSource = "source"
)

// indexConnection is the part of *pinecone.IndexConnection the index uses.
type indexConnection interface {
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	DescribeIndexStats(ctx context.Context) (*pinecone.DescribeIndexStatsResponse, error)
	Close() error
}

// PineconeIndex stores chunk embeddings in a Pinecone index. Chunk text and
// source travel as vector metadata.
type PineconeIndex struct {
	conn     indexConnection
	embedder Embedder
	retry    *RetryService
	config   *Config
	logger   Logger
}

func NewPineconeIndex(config *Config, embedder Embedder, logger Logger) (*PineconeIndex, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: config.APIKey})
	if err != nil {
		return nil, NewConnectionError("client", "failed to create Pinecone client", err)
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{
		Host:      config.IndexHost,
		Namespace: config.Namespace,
	})
	if err != nil {
		return nil, NewConnectionError("index", "failed to connect to Pinecone index", err)
	}

	logger.Info("Pinecone index connection established",
		"host", config.IndexHost,
		"namespace", config.Namespace)

	return newPineconeIndex(conn, config, embedder, logger), nil
}

func newPineconeIndex(conn indexConnection, config *Config, embedder Embedder, logger Logger) *PineconeIndex {
	return &PineconeIndex{
		conn:     conn,
		embedder: embedder,
		retry:    NewRetryService(config, logger),
		config:   config,
		logger:   logger,
	}
}

// Add embeds chunks and upserts them in batches.
func (p *PineconeIndex) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	values, err := embedChunks(ctx, p.embedder, chunks, p.config.BatchSize)
	if err != nil {
		return err
	}

	vectors := make([]*pinecone.Vector, 0, len(chunks))
	for i, c := range chunks {
		metadata, err := chunkMetadata(c)
		if err != nil {
			return NewOperationError("building metadata for "+c.ID, err)
		}
		v := values[i]
		vectors = append(vectors, &pinecone.Vector{
			Id:       c.ID,
			Values:   &v,
			Metadata: metadata,
		})
	}

	for start := 0; start < len(vectors); start += p.config.BatchSize {
		end := start + p.config.BatchSize
		if end > len(vectors) {
			end = len(vectors)
		}
		batch := vectors[start:end]

		err := p.retry.RetryWithTimeout(ctx, func(ctx context.Context) error {
			count, err := p.conn.UpsertVectors(ctx, batch)
			if err != nil {
				return err
			}
			p.logger.Debug("vectors upserted", "count", count)
			return nil
		})
		if err != nil {
			p.logger.Error("upsert failed", "batch_start", start, "error", err)
			return NewOperationError("upserting vectors", err)
		}
	}
	return nil
}

func (p *PineconeIndex) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	if topK <= 0 {
		return []Match{}, nil
	}

	embedding, err := p.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, NewOperationError("embedding query", err)
	}

	var resp *pinecone.QueryVectorsResponse
	err = p.retry.RetryWithTimeout(ctx, func(ctx context.Context) error {
		var err error
		resp, err = p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
			Vector:          embedding,
			TopK:            uint32(topK),
			IncludeMetadata: true,
		})
		return err
	})
	if err != nil {
		p.logger.Error("similarity search failed", "error", err)
		return nil, NewOperationError("search operation failed", err)
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, scored := range resp.Matches {
		if scored == nil || scored.Vector == nil {
			continue
		}
		m := Match{ID: scored.Vector.Id, Score: scored.Score}
		if md := scored.Vector.Metadata; md != nil {
			fields := md.AsMap()
			m.Text, _ = fields[metadataText].(string)
			m.Source, _ = fields[metadataSource].(string)
		}
		matches = append(matches, m)
	}

	p.logger.Debug("similarity search completed", "results_count", len(matches))
	return matches, nil
}

func (p *PineconeIndex) GetStatus(ctx context.Context) ServiceStatus {
	status := ServiceStatus{Backend: BackendPinecone, Namespace: p.config.Namespace}

	stats, err := p.conn.DescribeIndexStats(ctx)
	if err != nil {
		status.Message = err.Error()
		return status
	}

	status.IsHealthy = true
	status.VectorCount = stats.TotalVectorCount
	status.Message = "Pinecone index reachable"
	return status
}

func (p *PineconeIndex) Close() error {
	return p.conn.Close()
}

func chunkMetadata(c Chunk) (*structpb.Struct, error) {
	fields := make(map[string]interface{}, len(c.Metadata)+2)
	for k, v := range c.Metadata {
		fields[k] = v
	}
	fields[metadataText] = c.Text
	fields[metadataSource] = c.Source
	return structpb.NewStruct(fields)
}

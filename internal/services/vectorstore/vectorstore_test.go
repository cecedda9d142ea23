package vectorstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/iyunix/go-ragchat/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// keywordEmbedder maps text onto a tiny bag-of-keywords space.
type keywordEmbedder struct {
	calls int
	err   error
}

var keywords = []string{"sweden", "norway", "pasta"}

func (k *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	v := make([]float32, len(keywords))
	for i, kw := range keywords {
		v[i] = float32(strings.Count(lower, kw))
	}
	return v
}

func (k *keywordEmbedder) CreateEmbedding(_ context.Context, text string) ([]float32, error) {
	if k.err != nil {
		return nil, k.err
	}
	return k.vector(text), nil
}

func (k *keywordEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	k.calls++
	if k.err != nil {
		return nil, k.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = k.vector(t)
	}
	return out, nil
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.BatchSize = 2
	cfg.MaxRetries = 1
	cfg.RetryDelay = time.Millisecond
	return cfg
}

var corpus = []Chunk{
	{ID: "1", Text: "Stockholm is the capital of Sweden", Source: "geo.md"},
	{ID: "2", Text: "Oslo is the capital of Norway", Source: "geo.md"},
	{ID: "3", Text: "Carbonara is a pasta dish", Source: "food.txt"},
}

func TestMemoryIndexSearch(t *testing.T) {
	embedder := &keywordEmbedder{}
	idx := NewMemoryIndex(testConfig(), embedder, nopLogger{})

	require.NoError(t, idx.Add(context.Background(), corpus))
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 2, embedder.calls, "three chunks in batches of two")

	matches, err := idx.Search(context.Background(), "what about Sweden?", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "1", matches[0].ID)
	assert.Equal(t, "geo.md", matches[0].Source)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestMemoryIndexReplacesByID(t *testing.T) {
	idx := NewMemoryIndex(testConfig(), &keywordEmbedder{}, nopLogger{})
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, corpus[:1]))
	require.NoError(t, idx.Add(ctx, []Chunk{{ID: "1", Text: "pasta", Source: "x"}}))
	assert.Equal(t, 1, idx.Len())
}

func TestEmbeddingFailureIsIndexingFailure(t *testing.T) {
	idx := NewMemoryIndex(testConfig(), &keywordEmbedder{err: errors.New("ollama down")}, nopLogger{})

	err := idx.Add(context.Background(), corpus)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexingFailure)
	assert.Zero(t, idx.Len())
}

type fakeConn struct {
	upserted  []*pinecone.Vector
	upsertErr error
	query     *pinecone.QueryByVectorValuesRequest
}

func (f *fakeConn) UpsertVectors(_ context.Context, in []*pinecone.Vector) (uint32, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserted = append(f.upserted, in...)
	return uint32(len(in)), nil
}

func (f *fakeConn) QueryByVectorValues(_ context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error) {
	f.query = in
	md, _ := structpb.NewStruct(map[string]interface{}{"text": "Stockholm", "source": "geo.md"})
	return &pinecone.QueryVectorsResponse{
		Matches: []*pinecone.ScoredVector{
			{Vector: &pinecone.Vector{Id: "1", Metadata: md}, Score: 0.9},
			nil,
		},
	}, nil
}

func (f *fakeConn) DescribeIndexStats(context.Context) (*pinecone.DescribeIndexStatsResponse, error) {
	return &pinecone.DescribeIndexStatsResponse{TotalVectorCount: uint32(len(f.upserted))}, nil
}

func (f *fakeConn) Close() error { return nil }

func TestPineconeIndexAdd(t *testing.T) {
	conn := &fakeConn{}
	idx := newPineconeIndex(conn, testConfig(), &keywordEmbedder{}, nopLogger{})

	chunk := corpus[0]
	chunk.Metadata = map[string]string{"chunk_index": "0"}
	require.NoError(t, idx.Add(context.Background(), []Chunk{chunk, corpus[1], corpus[2]}))

	require.Len(t, conn.upserted, 3)
	first := conn.upserted[0]
	assert.Equal(t, "1", first.Id)
	require.NotNil(t, first.Values)
	assert.Equal(t, []float32{1, 0, 0}, *first.Values)
	fields := first.Metadata.AsMap()
	assert.Equal(t, "Stockholm is the capital of Sweden", fields["text"])
	assert.Equal(t, "geo.md", fields["source"])
	assert.Equal(t, "0", fields["chunk_index"])

	status := idx.GetStatus(context.Background())
	assert.True(t, status.IsHealthy)
	assert.Equal(t, uint32(3), status.VectorCount)
}

func TestPineconeIndexSearch(t *testing.T) {
	conn := &fakeConn{}
	idx := newPineconeIndex(conn, testConfig(), &keywordEmbedder{}, nopLogger{})

	matches, err := idx.Search(context.Background(), "sweden", 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, Match{ID: "1", Text: "Stockholm", Source: "geo.md", Score: 0.9}, matches[0])
	assert.Equal(t, uint32(3), conn.query.TopK)
	assert.True(t, conn.query.IncludeMetadata)
}

func TestPineconeUpsertFailure(t *testing.T) {
	conn := &fakeConn{upsertErr: errors.New("503")}
	idx := newPineconeIndex(conn, testConfig(), &keywordEmbedder{}, nopLogger{})

	err := idx.Add(context.Background(), corpus)
	assert.ErrorIs(t, err, domain.ErrIndexingFailure)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Backend = BackendPinecone
	assert.Error(t, cfg.Validate())

	cfg.APIKey = "key"
	cfg.IndexHost = "idx.svc.pinecone.io"
	assert.NoError(t, cfg.Validate())

	cfg.Backend = "qdrant"
	assert.Error(t, cfg.Validate())
}

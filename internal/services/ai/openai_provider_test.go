package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-ragchat/internal/domain"
)

type silentLogger struct{}

func (silentLogger) Info(string, ...interface{})  {}
func (silentLogger) Error(string, ...interface{}) {}
func (silentLogger) Debug(string, ...interface{}) {}
func (silentLogger) Warn(string, ...interface{})  {}

func newTestProvider(t *testing.T, handler http.Handler) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.LLMBaseURL = srv.URL + "/v1"
	cfg.MaxRetries = 2
	cfg.RetryDelay = time.Millisecond
	cfg.Timeout = 5 * time.Second

	p, err := NewOpenAIProvider(cfg, silentLogger{})
	require.NoError(t, err)
	return p
}

func TestComplete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Stockholm"},"finish_reason":"stop"}]}`)
	})
	p := newTestProvider(t, mux)

	reply, err := p.Complete(context.Background(), []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "Capital of Sweden?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Stockholm", reply)
	assert.Equal(t, "gemma3:4b-it-q4_K_M", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestCompleteFailureIsModelUnavailable(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"model crashed","type":"server_error"}}`)
	})
	p := newTestProvider(t, mux)

	_, err := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestStreamCompletion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, token := range []string{"Hel", "lo", "!"} {
			fmt.Fprintf(w, "data: {\"id\":\"s1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", token)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})
	p := newTestProvider(t, mux)

	var tokens []string
	err := p.StreamCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, func(delta string) error {
		tokens = append(tokens, delta)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo", "!"}, tokens)
}

func TestCreateEmbeddings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"object":"list","model":"nomic-embed-text","data":[`+
			`{"object":"embedding","index":1,"embedding":[0,1]},`+
			`{"object":"embedding","index":0,"embedding":[1,0]}]}`)
	})
	p := newTestProvider(t, mux)

	vectors, err := p.CreateEmbeddings(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 0}, vectors[0])
	assert.Equal(t, []float32{0, 1}, vectors[1])
}

func TestValidationErrorsAreNotModelFailures(t *testing.T) {
	p := newTestProvider(t, http.NewServeMux())

	_, err := p.Complete(context.Background(), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrModelUnavailable)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.ChatModel = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.TopP = 1.5
	assert.Error(t, cfg.Validate())
}

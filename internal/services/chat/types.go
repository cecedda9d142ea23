// File: internal/services/chat/types.go
package chat

import (
	"context"

	"github.com/iyunix/go-ragchat/internal/domain"
	"github.com/iyunix/go-ragchat/internal/services/ai"
	"github.com/iyunix/go-ragchat/internal/services/vectorstore"
)

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ModelClient is the language model the orchestrator talks to.
type ModelClient interface {
	Complete(ctx context.Context, messages []ai.Message) (string, error)
	StreamCompletion(ctx context.Context, messages []ai.Message, onDelta func(string) error) error
}

// Retriever finds document chunks related to a question.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]vectorstore.Match, error)
}

// InteractionResult is the outcome of one synchronous turn.
type InteractionResult struct {
	UserMessage      *domain.Message
	AssistantMessage *domain.Message
	Reply            string
	Sources          []string
}

type EventType string

const (
	EventToken    EventType = "token"
	EventError    EventType = "error"
	EventComplete EventType = "complete"
	EventSources  EventType = "sources"
)

// StreamEvent is one item of a streaming interaction. A stream carries any
// number of token events and ends with exactly one error or complete event.
type StreamEvent struct {
	Type    EventType
	Token   string
	Err     error
	Reply   string
	Message *domain.Message
	Sources []string
}

// Terminal reports whether the event ends the stream.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventError || e.Type == EventComplete
}

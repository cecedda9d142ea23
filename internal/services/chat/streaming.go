// File: internal/services/chat/streaming.go
package chat

import (
	"context"
	"strings"

	"github.com/iyunix/go-ragchat/internal/domain"
	"github.com/iyunix/go-ragchat/internal/services/ai"
)

// InteractStreaming commits the user record, then returns a channel fed by a
// producer goroutine. Tokens are forwarded as they arrive and accumulated;
// on success the full reply is stored as one assistant record before the
// complete event is sent. On failure an error event is sent and the partial
// reply is discarded. If ctx is cancelled the model call is aborted and
// nothing more is stored. The channel is closed after the terminal event.
// Other turns on the same chat wait until the stream has finished.
func (s *InteractionService) InteractStreaming(ctx context.Context, chatID uint, userText string) (<-chan StreamEvent, error) {
	userText, err := s.validateInput("interact_streaming", userText)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(chatID)
	history, err := s.history(ctx, chatID)
	if err != nil {
		unlock()
		return nil, classify("interact_streaming", chatID, err)
	}

	_, err = s.memory.Add(ctx, chatID, []ai.Message{{Role: string(domain.RoleUser), Content: userText}})
	if err != nil {
		unlock()
		s.logger.Error("failed to save user message", "chat_id", chatID, "error", err)
		return nil, classify("interact_streaming", chatID, err)
	}

	events := make(chan StreamEvent, s.config.StreamBuffer)
	go s.produce(ctx, chatID, history, userText, events, unlock)
	return events, nil
}

// produce owns the chat lock taken by InteractStreaming and releases it once
// the reply is stored or abandoned.
func (s *InteractionService) produce(ctx context.Context, chatID uint, history []ai.Message, userText string, events chan<- StreamEvent, unlock func()) {
	defer close(events)
	defer unlock()

	send := func(ev StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	s.logger.Info("starting stream chat", "chat_id", chatID)

	messages, sources := s.buildMessages(ctx, history, userText)
	if len(sources) > 0 && !send(StreamEvent{Type: EventSources, Sources: sources}) {
		return
	}

	var fullReply strings.Builder
	llmCtx, cancel := context.WithTimeout(ctx, s.config.ModelTimeout)
	defer cancel()

	streamErr := s.model.StreamCompletion(llmCtx, messages, func(token string) error {
		fullReply.WriteString(token)
		if !send(StreamEvent{Type: EventToken, Token: token}) {
			return ctx.Err()
		}
		return nil
	})

	if ctx.Err() != nil {
		s.logger.Info("stream cancelled by client, discarding reply", "chat_id", chatID, "discarded_length", fullReply.Len())
		return
	}

	if streamErr != nil {
		s.logger.Error("stream completion failed", "chat_id", chatID, "error", streamErr)
		send(StreamEvent{Type: EventError, Err: NewModelError("interact_streaming", chatID, streamErr)})
		return
	}

	reply := fullReply.String()
	persistCtx, cancelPersist := context.WithTimeout(ctx, s.config.PersistTimeout)
	defer cancelPersist()

	records, err := s.memory.Add(persistCtx, chatID, []ai.Message{{Role: string(domain.RoleAssistant), Content: reply}})
	if err != nil {
		s.logger.Error("failed to save assistant message", "chat_id", chatID, "error", err)
		send(StreamEvent{Type: EventError, Err: classify("persist_reply", chatID, err)})
		return
	}

	s.logger.Info("stream chat completed", "chat_id", chatID, "response_length", len(reply))
	send(StreamEvent{Type: EventComplete, Reply: reply, Message: records[0], Sources: sources})
}

// File: internal/services/chat/interaction.go
package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-ragchat/internal/domain"
	"github.com/iyunix/go-ragchat/internal/repository"
	"github.com/iyunix/go-ragchat/internal/services/ai"
	"github.com/iyunix/go-ragchat/internal/services/memory"
)

// InteractionService runs user turns against the model: it replays the
// chat's memory window, optionally merges retrieved context, calls the
// model and records the new turns.
type InteractionService struct {
	config    *Config
	store     *repository.Store
	memory    *memory.ChatMemory
	model     ModelClient
	retriever Retriever
	rag       *RAGService
	locks     *ConversationLocks
	logger    Logger
}

// NewInteractionService wires the orchestrator. retriever may be nil, in
// which case RAG is skipped.
func NewInteractionService(
	config *Config,
	store *repository.Store,
	mem *memory.ChatMemory,
	model ModelClient,
	retriever Retriever,
	logger Logger,
) (*InteractionService, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, &ChatError{Type: ErrTypeConfig, Operation: "config", Message: err.Error()}
	}
	if store == nil || mem == nil || model == nil {
		return nil, NewValidationError("constructor", "store, memory and model are required")
	}

	return &InteractionService{
		config:    config,
		store:     store,
		memory:    mem,
		model:     model,
		retriever: retriever,
		rag:       NewRAGService(config, logger),
		locks:     NewConversationLocks(),
		logger:    logger,
	}, nil
}

// Interact runs one synchronous turn. The user and assistant records are
// written together after the model replies. When the model fails nothing is
// written, unless RetainUserTurnOnFailure is set, in which case the user
// record alone is kept.
func (s *InteractionService) Interact(ctx context.Context, chatID uint, userText string) (*InteractionResult, error) {
	userText, err := s.validateInput("interact", userText)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(chatID)
	defer unlock()

	history, err := s.history(ctx, chatID)
	if err != nil {
		return nil, classify("interact", chatID, err)
	}

	messages, sources := s.buildMessages(ctx, history, userText)

	s.logger.Info("calling model", "chat_id", chatID, "history", len(history), "rag_sources", len(sources))

	modelCtx, cancel := context.WithTimeout(ctx, s.config.ModelTimeout)
	reply, modelErr := s.model.Complete(modelCtx, messages)
	cancel()

	if modelErr != nil {
		s.logger.Error("model call failed", "chat_id", chatID, "error", modelErr)
		if s.config.RetainUserTurnOnFailure {
			if _, err := s.memory.Add(ctx, chatID, []ai.Message{{Role: string(domain.RoleUser), Content: userText}}); err != nil {
				s.logger.Error("failed to keep user turn", "chat_id", chatID, "error", err)
			}
		}
		return nil, NewModelError("interact", chatID, modelErr)
	}

	records, err := s.memory.Prepare(chatID, []ai.Message{
		{Role: string(domain.RoleUser), Content: userText},
		{Role: string(domain.RoleAssistant), Content: reply},
	})
	if err != nil {
		return nil, classify("interact", chatID, err)
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		return s.memory.AddTx(ctx, tx, chatID, records)
	})
	if err != nil {
		s.logger.Error("failed to persist turn", "chat_id", chatID, "error", err)
		return nil, classify("interact", chatID, err)
	}

	s.logger.Info("interaction complete", "chat_id", chatID, "reply_length", len(reply))
	return &InteractionResult{
		UserMessage:      records[0],
		AssistantMessage: records[1],
		Reply:            reply,
		Sources:          sources,
	}, nil
}

func (s *InteractionService) validateInput(operation, userText string) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", NewValidationError(operation, "message cannot be empty")
	}
	if utf8.RuneCountInString(userText) > s.config.MaxInputRunes {
		return "", NewValidationError(operation, "message is too long")
	}
	return userText, nil
}

// history loads the replay window. It also proves the chat exists.
func (s *InteractionService) history(ctx context.Context, chatID uint) ([]ai.Message, error) {
	records, err := s.memory.Get(ctx, chatID, s.config.HistoryWindow)
	if err != nil {
		return nil, err
	}
	return memory.ToModelMessages(records), nil
}

// buildMessages assembles the request: system prompt, history window, then
// the user turn, wrapped in retrieved context when RAG is on. A failed search
// degrades to a plain request.
func (s *InteractionService) buildMessages(ctx context.Context, history []ai.Message, userText string) ([]ai.Message, []string) {
	messages := make([]ai.Message, 0, len(history)+2)
	if prompt := strings.TrimSpace(s.config.SystemPrompt); prompt != "" {
		messages = append(messages, ai.Message{Role: string(domain.RoleSystem), Content: prompt})
	}
	messages = append(messages, history...)

	content := userText
	var sources []string
	if s.config.RAGEnabled && s.retriever != nil {
		searchCtx, cancel := context.WithTimeout(ctx, s.config.IndexTimeout)
		matches, err := s.retriever.Search(searchCtx, userText, s.config.RetrievalTopK)
		cancel()
		if err != nil {
			s.logger.Warn("retrieval failed, answering without context", "error", NewRAGError("search", "vector search failed", err))
		} else if len(matches) > 0 {
			content = s.rag.BuildPrompt(s.rag.BuildContext(matches), userText)
			if s.config.EnableSources {
				sources = s.rag.ExtractSources(matches)
			}
		}
	}

	messages = append(messages, ai.Message{Role: string(domain.RoleUser), Content: content})
	return messages, sources
}

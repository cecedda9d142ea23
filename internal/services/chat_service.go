// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-ragchat/internal/domain"
	"github.com/iyunix/go-ragchat/internal/repository"
	chatservice "github.com/iyunix/go-ragchat/internal/services/chat"
	"github.com/iyunix/go-ragchat/internal/services/memory"
)

const (
	maxTitleLength = 200
	maxPageSize    = 100
)

// ChatService is the entry point the handlers use for chats and turns.
type ChatService struct {
	store       *repository.Store
	memory      *memory.ChatMemory
	interaction *chatservice.InteractionService
	logger      Logger
}

var _ chatservice.Service = (*ChatService)(nil)

func NewChatService(
	store *repository.Store,
	mem *memory.ChatMemory,
	interaction *chatservice.InteractionService,
	logger Logger,
) (*ChatService, error) {
	if store == nil {
		return nil, chatservice.NewValidationError("constructor", "store is required")
	}
	if mem == nil {
		return nil, chatservice.NewValidationError("constructor", "chat memory is required")
	}
	if interaction == nil {
		return nil, chatservice.NewValidationError("constructor", "interaction service is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &ChatService{
		store:       store,
		memory:      mem,
		interaction: interaction,
		logger:      logger,
	}, nil
}

// Basic chat operations
func (s *ChatService) CreateChat(ctx context.Context, title string) (*domain.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, chatservice.NewValidationError("create_chat", "chat title cannot be empty")
	}
	// Cut on a rune boundary so the stored title stays valid UTF-8.
	for len(title) > maxTitleLength {
		_, size := utf8.DecodeLastRuneInString(title)
		title = title[:len(title)-size]
	}

	created, err := s.store.Chats.Create(ctx, &domain.Chat{Title: title})
	if err != nil {
		return nil, &chatservice.ChatError{
			Type:      chatservice.ErrTypeStorage,
			Operation: "create_chat",
			Message:   "could not create chat",
			Cause:     err,
		}
	}
	s.logger.Info("chat created", "chat_id", created.ID)
	return created, nil
}

// ListChats returns every chat, newest first.
func (s *ChatService) ListChats(ctx context.Context) ([]domain.Chat, error) {
	chats, err := s.store.Chats.FindAll(ctx)
	if err != nil {
		return nil, &chatservice.ChatError{Type: chatservice.ErrTypeStorage, Operation: "list_chats", Message: "could not list chats", Cause: err}
	}
	return chats, nil
}

// ListChatsPage returns one page of chats, newest first, and the total count.
func (s *ChatService) ListChatsPage(ctx context.Context, limit, offset int) ([]domain.Chat, int64, error) {
	if limit <= 0 || limit > maxPageSize {
		return nil, 0, chatservice.NewValidationError("list_chats", "limit must be between 1 and 100")
	}
	if offset < 0 {
		return nil, 0, chatservice.NewValidationError("list_chats", "offset cannot be negative")
	}
	chats, total, err := s.store.Chats.FindAllWithPagination(ctx, limit, offset)
	if err != nil {
		return nil, 0, &chatservice.ChatError{Type: chatservice.ErrTypeStorage, Operation: "list_chats", Message: "could not list chats", Cause: err}
	}
	return chats, total, nil
}

// GetChat loads a chat with its full history, oldest first.
func (s *ChatService) GetChat(ctx context.Context, chatID uint) (*domain.Chat, error) {
	c, err := s.store.Chats.FindByIDWithHistory(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, chatservice.NewNotFoundError("get_chat", chatID)
		}
		return nil, &chatservice.ChatError{Type: chatservice.ErrTypeStorage, Operation: "get_chat", Message: "could not load chat", ChatID: chatID, Cause: err}
	}
	domain.SortMessages(c.History)
	return c, nil
}

// DeleteChat removes the chat and all of its messages.
func (s *ChatService) DeleteChat(ctx context.Context, chatID uint) error {
	if err := s.store.Chats.Delete(ctx, chatID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return chatservice.NewNotFoundError("delete_chat", chatID)
		}
		return &chatservice.ChatError{Type: chatservice.ErrTypeStorage, Operation: "delete_chat", Message: "could not delete chat", ChatID: chatID, Cause: err}
	}
	s.logger.Info("chat deleted", "chat_id", chatID)
	return nil
}

// ClearHistory forwards to the memory adapter, which only deletes when
// clearing is enabled.
func (s *ChatService) ClearHistory(ctx context.Context, chatID uint) error {
	if err := s.memory.Clear(ctx, chatID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return chatservice.NewNotFoundError("clear_history", chatID)
		}
		return &chatservice.ChatError{Type: chatservice.ErrTypeStorage, Operation: "clear_history", Message: "could not clear history", ChatID: chatID, Cause: err}
	}
	return nil
}

// Interaction
func (s *ChatService) Interact(ctx context.Context, chatID uint, userText string) (*chatservice.InteractionResult, error) {
	return s.interaction.Interact(ctx, chatID, userText)
}

func (s *ChatService) InteractStreaming(ctx context.Context, chatID uint, userText string) (<-chan chatservice.StreamEvent, error) {
	return s.interaction.InteractStreaming(ctx, chatID, userText)
}

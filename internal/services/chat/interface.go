// File: internal/services/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-ragchat/internal/domain"
)

// Interactor handles one synchronous user turn.
type Interactor interface {
	Interact(ctx context.Context, chatID uint, userText string) (*InteractionResult, error)
}

// StreamProvider handles one streamed user turn.
type StreamProvider interface {
	InteractStreaming(ctx context.Context, chatID uint, userText string) (<-chan StreamEvent, error)
}

// ChatProvider handles basic chat operations
type ChatProvider interface {
	CreateChat(ctx context.Context, title string) (*domain.Chat, error)
	ListChats(ctx context.Context) ([]domain.Chat, error)
	ListChatsPage(ctx context.Context, limit, offset int) ([]domain.Chat, int64, error)
	GetChat(ctx context.Context, chatID uint) (*domain.Chat, error)
	DeleteChat(ctx context.Context, chatID uint) error
	ClearHistory(ctx context.Context, chatID uint) error
}

// Service combines all chat capabilities
type Service interface {
	ChatProvider
	Interactor
	StreamProvider
}

package chat

import (
	"context"

	"gorm.io/gorm"

	"github.com/iyunix/go-ragchat/internal/domain"
)

// ChatRepository handles chat data operations.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error)
	FindByID(ctx context.Context, id uint) (*domain.Chat, error)
	FindByIDWithHistory(ctx context.Context, id uint) (*domain.Chat, error)
	FindAll(ctx context.Context) ([]domain.Chat, error)
	FindAllWithPagination(ctx context.Context, limit, offset int) ([]domain.Chat, int64, error)
	Delete(ctx context.Context, chatID uint) error
	TouchUpdatedAt(ctx context.Context, chatID uint) error
	ExistsByID(ctx context.Context, chatID uint) (bool, error)

	// WithTx returns a repository bound to an open transaction.
	WithTx(tx *gorm.DB) ChatRepository
}

// File: internal/repository/message/interface.go
package message

import (
	"context"

	"gorm.io/gorm"

	"github.com/iyunix/go-ragchat/internal/domain"
)

// MessageRepository persists message records. Records are append-only: there
// is no update operation.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	CreateInBatch(ctx context.Context, messages []*domain.Message, batchSize int) error
	FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error)
	FindOldestMessages(ctx context.Context, chatID uint, limit int) ([]domain.Message, error)
	FindRecentMessages(ctx context.Context, chatID uint, limit int) ([]domain.Message, error)
	CountByChatID(ctx context.Context, chatID uint) (int64, error)
	DeleteByChatID(ctx context.Context, chatID uint) (int64, error)

	// WithTx returns a repository bound to an open transaction.
	WithTx(tx *gorm.DB) MessageRepository
}

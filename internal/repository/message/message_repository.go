// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/iyunix/go-ragchat/internal/domain"
)

const (
	defaultBatchSize = 100
	maxWindow        = 1000
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) WithTx(tx *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: tx}
}

// Create inserts a single record.
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := r.validateMessageInput(message); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		// Content stays out of the log.
		log.Printf("[MessageRepository] Database error during message creation for chat ID %d: %v", message.ChatID, err)
		return nil, storageError("creating message", err)
	}

	log.Printf("[MessageRepository] Message created successfully with ID: %d for chat: %d", message.ID, message.ChatID)
	return message, nil
}

// CreateInBatch validates every record first, then inserts them in batches.
// Callers that need all-or-nothing semantics run it inside a transaction.
func (r *gormMessageRepository) CreateInBatch(ctx context.Context, messages []*domain.Message, batchSize int) error {
	if len(messages) == 0 {
		return nil
	}
	if batchSize <= 0 || batchSize > maxWindow {
		batchSize = defaultBatchSize
	}

	for i, m := range messages {
		if err := r.validateMessageInput(m); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}

	if err := r.db.WithContext(ctx).CreateInBatches(messages, batchSize).Error; err != nil {
		log.Printf("[MessageRepository] Batch creation failed for chat ID %d: %v", messages[0].ChatID, err)
		return storageError("creating messages", err)
	}
	return nil
}

// FindByChatID returns the full history, oldest first.
func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID uint) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for chat ID %d: %v", chatID, err)
		return nil, storageError("fetching messages", err)
	}
	return messages, nil
}

// FindOldestMessages returns the first limit records of the ascending order.
func (r *gormMessageRepository) FindOldestMessages(ctx context.Context, chatID uint, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}
	if limit > maxWindow {
		limit = maxWindow
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding oldest messages for chat ID %d: %v", chatID, err)
		return nil, storageError("fetching oldest messages", err)
	}
	return messages, nil
}

// FindRecentMessages returns the last limit records, still oldest first.
func (r *gormMessageRepository) FindRecentMessages(ctx context.Context, chatID uint, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}
	if limit > maxWindow {
		limit = maxWindow
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding recent messages for chat ID %d: %v", chatID, err)
		return nil, storageError("fetching recent messages", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *gormMessageRepository) CountByChatID(ctx context.Context, chatID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("chat_id = ?", chatID).Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for chat ID %d: %v", chatID, err)
		return 0, storageError("counting messages", err)
	}
	return count, nil
}

// DeleteByChatID removes a chat's whole history and reports how many rows
// went away.
func (r *gormMessageRepository) DeleteByChatID(ctx context.Context, chatID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&domain.Message{})
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error deleting messages for chat ID %d: %v", chatID, result.Error)
		return 0, storageError("deleting messages", result.Error)
	}
	return result.RowsAffected, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormMessageRepository) validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ChatID == 0 {
		return errors.New("chat ID is required")
	}
	if !message.Role.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRole, message.Role)
	}
	return nil
}

func storageError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageFailure, operation, err)
}

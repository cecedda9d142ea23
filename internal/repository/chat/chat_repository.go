// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/iyunix/go-ragchat/internal/domain"
)

var ErrChatNotFound = fmt.Errorf("chat %w", domain.ErrNotFound)

const maxTitleLength = 200

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) WithTx(tx *gorm.DB) ChatRepository {
	return &gormChatRepository{db: tx}
}

// Create validates the title and inserts the chat. CreatedAt is set by gorm
// and never written again.
func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	if err := r.validateChatInput(chat); err != nil {
		log.Printf("[ChatRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Omit("History").Create(chat).Error; err != nil {
		log.Printf("[ChatRepository] Database error during chat creation: %v", err)
		return nil, storageError("creating chat", err)
	}

	log.Printf("[ChatRepository] Chat created successfully with ID: %d", chat.ID)
	return chat, nil
}

// FindByID loads the chat row only.
func (r *gormChatRepository) FindByID(ctx context.Context, chatID uint) (*domain.Chat, error) {
	if chatID == 0 {
		return nil, ErrChatNotFound
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).First(&chat, chatID).Error
	return r.handleFindError(err, &chat, "FindByID")
}

// FindByIDWithHistory loads the chat and its messages, oldest first.
func (r *gormChatRepository) FindByIDWithHistory(ctx context.Context, chatID uint) (*domain.Chat, error) {
	if chatID == 0 {
		return nil, ErrChatNotFound
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&chat, chatID).Error
	return r.handleFindError(err, &chat, "FindByIDWithHistory")
}

// FindAll returns every chat, newest first.
func (r *gormChatRepository) FindAll(ctx context.Context) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&chats).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error listing chats: %v", err)
		return nil, storageError("listing chats", err)
	}
	return chats, nil
}

// FindAllWithPagination bounds the listing for large installations.
func (r *gormChatRepository) FindAllWithPagination(ctx context.Context, limit, offset int) ([]domain.Chat, int64, error) {
	if limit <= 0 || limit > 1000 {
		return nil, 0, errors.New("invalid limit: must be between 1 and 1000")
	}
	if offset < 0 {
		return nil, 0, errors.New("invalid offset: must be >= 0")
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Chat{}).Count(&total).Error; err != nil {
		log.Printf("[ChatRepository] Database error counting chats: %v", err)
		return nil, 0, storageError("counting chats", err)
	}

	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&chats).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error in paginated query: %v", err)
		return nil, 0, storageError("paginating chats", err)
	}

	return chats, total, nil
}

// Delete removes the chat and every message it owns in one transaction.
// Messages are deleted explicitly so no orphan survives even when the
// backend does not enforce the foreign-key cascade.
func (r *gormChatRepository) Delete(ctx context.Context, chatID uint) error {
	if chatID == 0 {
		return ErrChatNotFound
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&domain.Message{}).Error; err != nil {
			return storageError("deleting chat messages", err)
		}
		result := tx.Delete(&domain.Chat{}, chatID)
		if result.Error != nil {
			return storageError("deleting chat", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrChatNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Printf("[ChatRepository] Database error deleting chat ID %d: %v", chatID, err)
		}
		return err
	}

	log.Printf("[ChatRepository] Chat deleted successfully: ID %d", chatID)
	return nil
}

// TouchUpdatedAt bumps the chat's activity timestamp.
func (r *gormChatRepository) TouchUpdatedAt(ctx context.Context, chatID uint) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", r.db.NowFunc())
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error updating timestamp for chat ID %d: %v", chatID, result.Error)
		return storageError("updating chat timestamp", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}

func (r *gormChatRepository) ExistsByID(ctx context.Context, chatID uint) (bool, error) {
	if chatID == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Chat{}).Where("id = ?", chatID).Count(&count).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error checking chat existence for ID %d: %v", chatID, err)
		return false, storageError("checking chat existence", err)
	}
	return count > 0, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormChatRepository) validateChatInput(chat *domain.Chat) error {
	if chat == nil {
		return errors.New("chat cannot be nil")
	}
	if strings.TrimSpace(chat.Title) == "" {
		return errors.New("title is required")
	}
	if len(chat.Title) > maxTitleLength {
		return fmt.Errorf("title must be %d characters or less", maxTitleLength)
	}
	return nil
}

// ===== ERROR HANDLING HELPERS =====

func (r *gormChatRepository) handleFindError(err error, chat *domain.Chat, operation string) (*domain.Chat, error) {
	if err == nil {
		return chat, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatNotFound
	}

	log.Printf("[ChatRepository] %s database error: %v", operation, err)
	return nil, storageError("querying chat", err)
}

func storageError(operation string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStorageFailure, operation, err)
}

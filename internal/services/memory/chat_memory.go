// File: internal/services/memory/chat_memory.go
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/iyunix/go-ragchat/internal/domain"
	"github.com/iyunix/go-ragchat/internal/repository"
	"github.com/iyunix/go-ragchat/internal/services/ai"
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// ChatMemory replays a chat's stored history to the model client and
// records new turns.
type ChatMemory struct {
	store  *repository.Store
	config *Config
	logger Logger
	now    func() time.Time
}

func NewChatMemory(store *repository.Store, config *Config, logger Logger) (*ChatMemory, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("memory config: %w", err)
	}
	return &ChatMemory{
		store:  store,
		config: config,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (m *ChatMemory) Config() Config {
	return *m.config
}

// Add appends messages to the chat in their given order. A missing chat
// fails with ErrNotFound, then every role is checked before anything is
// written, and all records commit together.
func (m *ChatMemory) Add(ctx context.Context, chatID uint, messages []ai.Message) ([]*domain.Message, error) {
	var records []*domain.Message
	err := m.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureChat(ctx, tx, chatID); err != nil {
			return err
		}
		prepared, err := m.Prepare(chatID, messages)
		if err != nil {
			return err
		}
		records = prepared
		return m.AddTx(ctx, tx, chatID, records)
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("messages appended", "chat_id", chatID, "count", len(records))
	return records, nil
}

// Prepare maps model messages onto unsaved records with strictly increasing
// timestamps, so their stored order matches the input order.
func (m *ChatMemory) Prepare(chatID uint, messages []ai.Message) ([]*domain.Message, error) {
	base := m.now()
	records := make([]*domain.Message, 0, len(messages))
	for i, msg := range messages {
		record, err := FromModelMessage(chatID, msg, base.Add(time.Duration(i)*time.Microsecond))
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// AddTx writes prepared records inside a transaction the caller owns.
func (m *ChatMemory) AddTx(ctx context.Context, tx *repository.Store, chatID uint, records []*domain.Message) error {
	if err := ensureChat(ctx, tx, chatID); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	if err := tx.Messages.CreateInBatch(ctx, records, len(records)); err != nil {
		return err
	}
	return tx.Chats.TouchUpdatedAt(ctx, chatID)
}

// Get returns at most maxMessages records, oldest first. maxMessages <= 0
// uses the configured limit. Which records survive the cut depends on the
// window policy.
func (m *ChatMemory) Get(ctx context.Context, chatID uint, maxMessages int) ([]domain.Message, error) {
	if maxMessages <= 0 {
		maxMessages = m.config.MaxMessages
	}

	if err := ensureChat(ctx, m.store, chatID); err != nil {
		return nil, err
	}

	var (
		records []domain.Message
		err     error
	)
	if m.config.WindowPolicy == WindowRecent {
		records, err = m.store.Messages.FindRecentMessages(ctx, chatID, maxMessages)
	} else {
		records, err = m.store.Messages.FindOldestMessages(ctx, chatID, maxMessages)
	}
	if err != nil {
		return nil, err
	}

	domain.SortMessages(records)
	return records, nil
}

// Clear leaves history untouched unless clearing is enabled, in which case
// it deletes every message of the chat. The chat itself remains.
func (m *ChatMemory) Clear(ctx context.Context, chatID uint) error {
	if !m.config.ClearEnabled {
		m.logger.Debug("clear requested but disabled", "chat_id", chatID)
		return nil
	}

	return m.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureChat(ctx, tx, chatID); err != nil {
			return err
		}
		deleted, err := tx.Messages.DeleteByChatID(ctx, chatID)
		if err != nil {
			return err
		}
		m.logger.Info("chat history cleared", "chat_id", chatID, "deleted", deleted)
		return nil
	})
}

func ensureChat(ctx context.Context, store *repository.Store, chatID uint) error {
	exists, err := store.Chats.ExistsByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("chat %d: %w", chatID, domain.ErrNotFound)
	}
	return nil
}

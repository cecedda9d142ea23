// File: internal/repository/store.go
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iyunix/go-ragchat/internal/repository/chat"
	"github.com/iyunix/go-ragchat/internal/repository/document"
	"github.com/iyunix/go-ragchat/internal/repository/message"
)

// Store groups the repositories that share one database handle.
type Store struct {
	db        *gorm.DB
	Chats     chat.ChatRepository
	Messages  message.MessageRepository
	Documents document.DocumentRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:        db,
		Chats:     chat.NewChatRepository(db),
		Messages:  message.NewMessageRepository(db),
		Documents: document.NewDocumentRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single database
// transaction. Any error returned by fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{
			db:        tx,
			Chats:     s.Chats.WithTx(tx),
			Messages:  s.Messages.WithTx(tx),
			Documents: s.Documents.WithTx(tx),
		})
	})
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

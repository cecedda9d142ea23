package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-ragchat/internal/database/dbtest"
	"github.com/iyunix/go-ragchat/internal/domain"
)

func TestStoreTransactionCommits(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.New(t))

	c, err := store.Chats.Create(ctx, &domain.Chat{Title: "tx"})
	require.NoError(t, err)

	now := time.Now().UTC()
	err = store.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.Messages.Create(ctx, &domain.Message{ChatID: c.ID, Role: domain.RoleUser, Content: "q", CreatedAt: now}); err != nil {
			return err
		}
		_, err := tx.Messages.Create(ctx, &domain.Message{ChatID: c.ID, Role: domain.RoleAssistant, Content: "a", CreatedAt: now.Add(time.Millisecond)})
		return err
	})
	require.NoError(t, err)

	count, err := store.Messages.CountByChatID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStoreTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	store := NewStore(dbtest.New(t))

	c, err := store.Chats.Create(ctx, &domain.Chat{Title: "rollback"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.Messages.Create(ctx, &domain.Message{ChatID: c.ID, Role: domain.RoleUser, Content: "q"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	count, err := store.Messages.CountByChatID(ctx, c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

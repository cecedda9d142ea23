package message_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-ragchat/internal/database/dbtest"
	"github.com/iyunix/go-ragchat/internal/domain"
	"github.com/iyunix/go-ragchat/internal/repository/chat"
	"github.com/iyunix/go-ragchat/internal/repository/message"
)

func seed(t *testing.T, n int) (message.MessageRepository, uint) {
	t.Helper()
	ctx := context.Background()
	db := dbtest.New(t)

	c, err := chat.NewChatRepository(db).Create(ctx, &domain.Chat{Title: "seeded"})
	require.NoError(t, err)

	repo := message.NewMessageRepository(db)
	base := time.Now().UTC()
	batch := make([]*domain.Message, 0, n)
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		batch = append(batch, &domain.Message{
			ChatID:    c.ID,
			Role:      role,
			Content:   string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	require.NoError(t, repo.CreateInBatch(ctx, batch, 10))
	return repo, c.ID
}

func contents(messages []domain.Message) string {
	var out []byte
	for _, m := range messages {
		out = append(out, m.Content...)
	}
	return string(out)
}

func TestFindByChatIDAscending(t *testing.T) {
	repo, chatID := seed(t, 5)

	all, err := repo.FindByChatID(context.Background(), chatID)
	require.NoError(t, err)
	assert.Equal(t, "abcde", contents(all))
}

func TestWindows(t *testing.T) {
	repo, chatID := seed(t, 6)
	ctx := context.Background()

	oldest, err := repo.FindOldestMessages(ctx, chatID, 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", contents(oldest))

	recent, err := repo.FindRecentMessages(ctx, chatID, 4)
	require.NoError(t, err)
	assert.Equal(t, "cdef", contents(recent))

	none, err := repo.FindOldestMessages(ctx, chatID, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.FindRecentMessages(ctx, chatID, 50)
	require.NoError(t, err)
	assert.Equal(t, "abcdef", contents(all))
}

func TestDeleteByChatID(t *testing.T) {
	repo, chatID := seed(t, 4)
	ctx := context.Background()

	deleted, err := repo.DeleteByChatID(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	count, err := repo.CountByChatID(ctx, chatID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	repo, chatID := seed(t, 0)

	_, err := repo.Create(context.Background(), &domain.Message{ChatID: chatID, Role: "moderator", Content: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-ragchat/internal/database/dbtest"
	"github.com/iyunix/go-ragchat/internal/domain"
	"github.com/iyunix/go-ragchat/internal/repository"
	"github.com/iyunix/go-ragchat/internal/services/ai"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newMemory(t *testing.T, cfg *Config) (*ChatMemory, *repository.Store, uint) {
	t.Helper()
	store := repository.NewStore(dbtest.New(t))
	c, err := store.Chats.Create(context.Background(), &domain.Chat{Title: "memory"})
	require.NoError(t, err)

	mem, err := NewChatMemory(store, cfg, nopLogger{})
	require.NoError(t, err)
	return mem, store, c.ID
}

func turns(n int) []ai.Message {
	out := make([]ai.Message, 0, n)
	for i := 0; i < n; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		out = append(out, ai.Message{Role: role, Content: fmt.Sprintf("m%02d", i)})
	}
	return out
}

func contents(records []domain.Message) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Content)
	}
	return out
}

func TestAddThenGetKeepsOrder(t *testing.T) {
	mem, _, chatID := newMemory(t, nil)
	ctx := context.Background()

	_, err := mem.Add(ctx, chatID, []ai.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "Capital of Sweden?"},
		{Role: "assistant", Content: "Stockholm."},
	})
	require.NoError(t, err)

	got, err := mem.Get(ctx, chatID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"be brief", "Capital of Sweden?", "Stockholm."}, contents(got))
	assert.Equal(t, domain.RoleSystem, got[0].Role)
	assert.Equal(t, domain.RoleAssistant, got[2].Role)

	msgs := ToModelMessages(got)
	assert.Equal(t, ai.Message{Role: "user", Content: "Capital of Sweden?"}, msgs[1])
}

func TestGetOldestWindow(t *testing.T) {
	mem, _, chatID := newMemory(t, nil)
	ctx := context.Background()

	_, err := mem.Add(ctx, chatID, turns(20))
	require.NoError(t, err)

	got, err := mem.Get(ctx, chatID, 5)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, []string{"m00", "m01", "m02", "m03", "m04"}, contents(got))

	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].CreatedAt.Before(got[i-1].CreatedAt))
	}
}

func TestGetRecentWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WindowPolicy = WindowRecent
	mem, _, chatID := newMemory(t, cfg)
	ctx := context.Background()

	_, err := mem.Add(ctx, chatID, turns(8))
	require.NoError(t, err)

	got, err := mem.Get(ctx, chatID, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m05", "m06", "m07"}, contents(got))
}

func TestGetDefaultsToConfiguredLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMessages = 4
	mem, _, chatID := newMemory(t, cfg)
	ctx := context.Background()

	_, err := mem.Add(ctx, chatID, turns(6))
	require.NoError(t, err)

	got, err := mem.Get(ctx, chatID, 0)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestAddRejectsUnknownRoleAtomically(t *testing.T) {
	mem, store, chatID := newMemory(t, nil)
	ctx := context.Background()

	_, err := mem.Add(ctx, chatID, []ai.Message{
		{Role: "user", Content: "hi"},
		{Role: "moderator", Content: "nope"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	count, err := store.Messages.CountByChatID(ctx, chatID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMissingChat(t *testing.T) {
	mem, _, _ := newMemory(t, nil)
	ctx := context.Background()

	_, err := mem.Add(ctx, 999, turns(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = mem.Add(ctx, 999, []ai.Message{{Role: "moderator"}})
	assert.ErrorIs(t, err, domain.ErrNotFound, "existence is checked before roles")

	_, err = mem.Get(ctx, 999, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClearIsNoOpByDefault(t *testing.T) {
	mem, _, chatID := newMemory(t, nil)
	ctx := context.Background()

	_, err := mem.Add(ctx, chatID, turns(3))
	require.NoError(t, err)
	require.NoError(t, mem.Clear(ctx, chatID))

	got, err := mem.Get(ctx, chatID, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestClearWhenEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClearEnabled = true
	mem, store, chatID := newMemory(t, cfg)
	ctx := context.Background()

	_, err := mem.Add(ctx, chatID, turns(3))
	require.NoError(t, err)
	require.NoError(t, mem.Clear(ctx, chatID))

	got, err := mem.Get(ctx, chatID, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	exists, err := store.Chats.ExistsByID(ctx, chatID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFromModelMessage(t *testing.T) {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	record, err := FromModelMessage(3, ai.Message{Role: "Assistant", Content: "ok"}, at)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, record.Role)
	assert.Equal(t, uint(3), record.ChatID)
	assert.Equal(t, at, record.CreatedAt)

	_, err = FromModelMessage(3, ai.Message{Role: "moderator"}, at)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{MaxMessages: 0, WindowPolicy: WindowOldest}).Validate())
	assert.Error(t, (&Config{MaxMessages: 3, WindowPolicy: "middle"}).Validate())
}

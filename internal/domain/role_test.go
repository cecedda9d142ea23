package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, name := range []string{"user", "assistant", "system", " User "} {
		role, err := ParseRole(name)
		require.NoError(t, err, name)
		assert.True(t, role.Valid())
	}

	_, err := ParseRole("moderator")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRole))
}

func TestSortMessages(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	messages := []Message{
		{ID: 3, Content: "c", CreatedAt: base.Add(2 * time.Second)},
		{ID: 2, Content: "b2", CreatedAt: base},
		{ID: 1, Content: "b1", CreatedAt: base},
		{ID: 4, Content: "a", CreatedAt: base.Add(-time.Second)},
	}

	SortMessages(messages)

	var got []string
	for _, m := range messages {
		got = append(got, m.Content)
	}
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, got)
}

func TestChatAddMessage(t *testing.T) {
	chat := &Chat{ID: 7, Title: "demo"}
	now := time.Now()

	msg := chat.AddMessage(RoleUser, "hi", now)

	require.Len(t, chat.History, 1)
	assert.Equal(t, uint(7), msg.ChatID)
	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, now, msg.CreatedAt)
}

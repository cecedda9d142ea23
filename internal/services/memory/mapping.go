package memory

import (
	"time"

	"github.com/iyunix/go-ragchat/internal/domain"
	"github.com/iyunix/go-ragchat/internal/services/ai"
)

// ToModelMessage re-materialises a stored record for the model client.
func ToModelMessage(m domain.Message) ai.Message {
	return ai.Message{Role: m.Role.String(), Content: m.Content}
}

// ToModelMessages maps a whole history window, keeping its order.
func ToModelMessages(records []domain.Message) []ai.Message {
	out := make([]ai.Message, 0, len(records))
	for _, r := range records {
		out = append(out, ToModelMessage(r))
	}
	return out
}

// FromModelMessage builds an unsaved record. The role must be user,
// assistant or system.
func FromModelMessage(chatID uint, m ai.Message, at time.Time) (*domain.Message, error) {
	role, err := domain.ParseRole(m.Role)
	if err != nil {
		return nil, err
	}
	return &domain.Message{
		ChatID:    chatID,
		Role:      role,
		Content:   m.Content,
		CreatedAt: at,
	}, nil
}

// File: internal/domain/message.go
package domain

import (
	"sort"
	"time"
)

// Message represents a single message within a chat.
type Message struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ChatID    uint      `json:"chat_id" gorm:"not null;index:idx_chat_messages,priority:1"`
	Role      Role      `json:"role" gorm:"type:varchar(16);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_chat_messages,priority:2"`
}

// SortMessages orders messages oldest first. CreatedAt is the ordering key;
// the ID only breaks ties between records written in the same instant.
func SortMessages(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}

// File: internal/domain/chat.go
package domain

import "time"

// Chat represents a single conversation thread.
type Chat struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Title     string    `json:"title" gorm:"size:200;not null"` // e.g. "Capital of Sweden"
	CreatedAt time.Time `json:"created_at" gorm:"index;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at"`

	// History is loaded on demand and ordered by CreatedAt. Messages go away
	// with their chat.
	History []Message `json:"history,omitempty" gorm:"foreignKey:ChatID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// AddMessage appends a new record to the in-memory history.
func (c *Chat) AddMessage(role Role, content string, at time.Time) *Message {
	c.History = append(c.History, Message{
		ChatID:    c.ID,
		Role:      role,
		Content:   content,
		CreatedAt: at,
	})
	return &c.History[len(c.History)-1]
}

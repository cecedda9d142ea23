package chat

import "sync"

// ConversationLocks hands out one mutex per chat id. Entries are dropped
// once nobody holds or waits for them.
type ConversationLocks struct {
	mu    sync.Mutex
	locks map[uint]*chatLock
}

type chatLock struct {
	mu      sync.Mutex
	holders int
}

func NewConversationLocks() *ConversationLocks {
	return &ConversationLocks{locks: make(map[uint]*chatLock)}
}

// Lock blocks until the chat is free and returns the matching unlock func.
func (l *ConversationLocks) Lock(chatID uint) func() {
	l.mu.Lock()
	entry, ok := l.locks[chatID]
	if !ok {
		entry = &chatLock{}
		l.locks[chatID] = entry
	}
	entry.holders++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.holders--
			if entry.holders == 0 {
				delete(l.locks, chatID)
			}
			l.mu.Unlock()
		})
	}
}

func (l *ConversationLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

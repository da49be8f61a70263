// Package snipe keeps the last deleted message per channel so the snipe
// command can replay it. Entries are in-memory only and expire after a TTL.
package snipe

import (
	"sync"
	"time"
)

type Message struct {
	Content    string
	AuthorName string
	AvatarURL  string
	CreatedAt  time.Time
	DeletedAt  time.Time
}

type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]Message
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{ttl: ttl, entries: make(map[string]Message)}
}

func (c *Cache) Put(channelID string, msg Message) {
	if channelID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[channelID] = msg
}

// Get returns the last deleted message for the channel, if one exists and
// has not expired.
func (c *Cache) Get(channelID string) (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.entries[channelID]
	if !ok {
		return Message{}, false
	}
	if time.Since(msg.DeletedAt) > c.ttl {
		delete(c.entries, channelID)
		return Message{}, false
	}
	return msg, true
}

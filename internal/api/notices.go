package api

import (
	"context"
	"sync"
	"time"
)

// Notices hold one pending status line per user, shown on the next page
// that user loads. *redis.Client implements it for multi-instance setups.
type Notices interface {
	Push(ctx context.Context, userID int64, text string) error
	Pop(ctx context.Context, userID int64) (string, error)
}

const (
	noticeCreated = "Message created successfully!"
	noticeUpdated = "Message updated successfully!"
	noticeDeleted = "Message deleted successfully!"
)

type notice struct {
	text    string
	expires time.Time
}

type MemoryNotices struct {
	mu    sync.Mutex
	items map[int64]notice
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryNotices(ttl time.Duration) *MemoryNotices {
	return &MemoryNotices{
		items: make(map[int64]notice),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (n *MemoryNotices) Push(_ context.Context, userID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items[userID] = notice{text: text, expires: n.now().Add(n.ttl)}
	return nil
}

func (n *MemoryNotices) Pop(_ context.Context, userID int64) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	item, ok := n.items[userID]
	if !ok {
		return "", nil
	}
	delete(n.items, userID)
	if n.now().After(item.expires) {
		return "", nil
	}
	return item.text, nil
}

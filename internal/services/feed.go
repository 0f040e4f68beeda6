package services

import (
	"sync"

	"pulse/internal/domain"
)

// subscriberBuffer is how many changes a subscriber may lag before new
// changes are dropped for it.
const subscriberBuffer = 16

type feedBroadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan domain.FeedChange
}

// NewFeedBroadcaster returns an in-process FeedBroadcaster. Publish
// never blocks: a subscriber whose buffer is full misses that change,
// which is acceptable because subscribers re-read authoritative state
// from the store.
func NewFeedBroadcaster() domain.FeedBroadcaster {
	return &feedBroadcaster{
		subs: make(map[int]chan domain.FeedChange),
	}
}

func (b *feedBroadcaster) Publish(change domain.FeedChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

func (b *feedBroadcaster) Subscribe() (<-chan domain.FeedChange, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan domain.FeedChange, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

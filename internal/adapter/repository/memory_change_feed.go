package repository

import (
	"context"
	"sync"
	"time"

	"thriftmart/internal/domain/entity"
	"thriftmart/pkg/logger"
)

const subscriptionBuffer = 32

type memoryChangeFeed struct {
	mu   sync.Mutex
	subs map[*memorySubscription]struct{}
}

func newMemoryChangeFeed() *memoryChangeFeed {
	return &memoryChangeFeed{subs: make(map[*memorySubscription]struct{})}
}

func (f *memoryChangeFeed) subscribe(ctx context.Context, table string) *memorySubscription {
	sub := &memorySubscription{
		table:  table,
		events: make(chan entity.ChangeEvent, subscriptionBuffer),
		done:   make(chan struct{}),
		feed:   f,
	}

	f.mu.Lock()
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub
}

// publish never blocks: a subscriber whose buffer is full misses the event.
// Every event triggers a full refetch, so a missed one is covered by the next.
func (f *memoryChangeFeed) publish(table string, changeType entity.ChangeType, recordID string) {
	event := entity.ChangeEvent{
		Table:    table,
		Type:     changeType,
		RecordID: recordID,
		At:       time.Now().UTC(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subs {
		if sub.table != table {
			continue
		}
		select {
		case sub.events <- event:
		default:
			logger.Warn("Change feed: dropping %s event for slow subscriber", changeType)
		}
	}
}

func (f *memoryChangeFeed) remove(sub *memorySubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub]; ok {
		delete(f.subs, sub)
		close(sub.events)
	}
}

func (f *memoryChangeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

type memorySubscription struct {
	table     string
	events    chan entity.ChangeEvent
	done      chan struct{}
	closeOnce sync.Once
	feed      *memoryChangeFeed
}

func (s *memorySubscription) Events() <-chan entity.ChangeEvent {
	return s.events
}

func (s *memorySubscription) Close() error {
	s.closeOnce.Do(func() {
		s.feed.remove(s)
		close(s.done)
	})
	return nil
}

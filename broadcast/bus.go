// Package broadcast distributes state snapshots to multiple subscribers.
//
// Publish never blocks. Each subscriber owns a bounded channel; when it is
// full, the oldest queued value is discarded to make room for the newest, so
// a slow subscriber always ends up holding the latest published value.
package broadcast

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrSubscriberExists is returned when Subscribe is called with a duplicate id.
	ErrSubscriberExists = errors.New("subscriber id already exists")

	// ErrSubscriberNotFound is returned when Unsubscribe is called with unknown id.
	ErrSubscriberNotFound = errors.New("subscriber id not found")

	// ErrBusClosed is returned when operations are attempted on a closed bus.
	ErrBusClosed = errors.New("bus is closed")
)

// Stats contains global and per-subscriber counters
type Stats struct {
	TotalPublished uint64
	TotalSent      uint64
	TotalReplaced  uint64
	Subscribers    map[string]SubscriberStats
}

// SubscriberStats tracks delivery for a single subscriber
type SubscriberStats struct {
	// Sent is the number of values queued for this subscriber
	Sent uint64
	// Replaced is the number of queued values discarded in favour of newer ones
	Replaced uint64
}

type subscriber[T any] struct {
	ch       chan T
	sent     atomic.Uint64
	replaced atomic.Uint64
}

// Bus fans values of type T out to subscribers
type Bus[T any] struct {
	mu             sync.Mutex
	subscribers    map[string]*subscriber[T]
	closed         bool
	totalPublished atomic.Uint64
}

// New creates an empty bus
func New[T any]() *Bus[T] {
	return &Bus[T]{subscribers: make(map[string]*subscriber[T])}
}

// Subscribe registers id and returns the channel it receives values on.
// buffer is raised to 1 if smaller. The channel is closed by Unsubscribe or Close.
func (b *Bus[T]) Subscribe(id string, buffer int) (<-chan T, error) {
	if buffer < 1 {
		buffer = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBusClosed
	}
	if _, exists := b.subscribers[id]; exists {
		return nil, ErrSubscriberExists
	}

	sub := &subscriber[T]{ch: make(chan T, buffer)}
	b.subscribers[id] = sub
	return sub.ch, nil
}

// Unsubscribe removes id and closes its channel
func (b *Bus[T]) Unsubscribe(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	sub, exists := b.subscribers[id]
	if !exists {
		return ErrSubscriberNotFound
	}

	delete(b.subscribers, id)
	close(sub.ch)
	return nil
}

// Publish queues v for every subscriber without blocking.
// Publishing on a closed bus is a no-op.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.totalPublished.Add(1)

	for _, sub := range b.subscribers {
		for {
			select {
			case sub.ch <- v:
				sub.sent.Add(1)
			default:
				// Full: drop the oldest value and retry
				select {
				case <-sub.ch:
					sub.replaced.Add(1)
				default:
				}
				continue
			}
			break
		}
	}
}

// Len returns the number of current subscribers
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Stats returns a snapshot of the delivery counters
func (b *Bus[T]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := Stats{
		TotalPublished: b.totalPublished.Load(),
		Subscribers:    make(map[string]SubscriberStats, len(b.subscribers)),
	}
	for id, sub := range b.subscribers {
		s := SubscriberStats{Sent: sub.sent.Load(), Replaced: sub.replaced.Load()}
		stats.TotalSent += s.Sent
		stats.TotalReplaced += s.Replaced
		stats.Subscribers[id] = s
	}
	return stats
}

// Close closes every subscriber channel and rejects further subscriptions.
// It is idempotent.
func (b *Bus[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
	return nil
}

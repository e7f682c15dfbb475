// Package event provides the in-process publish/subscribe bus plugins use
// to react to each other's mutations without direct coupling.
package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/felixroth/cableplan/internal/plugin"
)

// Handler processes one published event.
type Handler = plugin.EventHandler

// Compile-time interface guard.
var _ plugin.EventBus = (*Bus)(nil)

type subscriber struct {
	id      int
	handler Handler
}

// Bus is a synchronous topic-based pub/sub dispatcher. Handlers run inline
// on Publish (in subscription order) and on a single goroutine per event on
// PublishAsync. A panicking handler is recovered and logged; remaining
// handlers still run.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	topics map[string][]subscriber
	all    []subscriber
	logger *zap.Logger
}

// NewBus creates an event bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		topics: make(map[string][]subscriber),
		logger: logger,
	}
}

// Subscribe registers a handler for one topic. The returned function
// removes the subscription.
func (b *Bus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscriber{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.topics[topic] = removeSubscriber(b.topics[topic], id)
	}
}

// SubscribeAll registers a handler for every topic. The returned function
// removes the subscription.
func (b *Bus) SubscribeAll(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscriber{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = removeSubscriber(b.all, id)
	}
}

// Publish delivers the event synchronously to all matching handlers.
// Publishing with no subscribers is not an error.
func (b *Bus) Publish(ctx context.Context, e plugin.Event) error {
	for _, s := range b.snapshot(e.Topic) {
		b.deliver(ctx, s, e)
	}
	return nil
}

// PublishAsync delivers the event on a background goroutine and returns
// immediately.
func (b *Bus) PublishAsync(ctx context.Context, e plugin.Event) {
	subs := b.snapshot(e.Topic)
	go func() {
		for _, s := range subs {
			b.deliver(ctx, s, e)
		}
	}()
}

// snapshot returns the handlers for a topic plus the catch-all handlers,
// copied under the read lock so delivery runs unlocked.
func (b *Bus) snapshot(topic string) []subscriber {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]subscriber, 0, len(b.topics[topic])+len(b.all))
	out = append(out, b.topics[topic]...)
	out = append(out, b.all...)
	return out
}

func (b *Bus) deliver(ctx context.Context, s subscriber, e plugin.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", e.Topic),
				zap.Any("panic", r),
			)
		}
	}()
	s.handler(ctx, e)
}

func removeSubscriber(subs []subscriber, id int) []subscriber {
	for i := range subs {
		if subs[i].id == id {
			return append(subs[:i], subs[i+1:]...)
		}
	}
	return subs
}

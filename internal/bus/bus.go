// Package bus is the change notification bus shared by all editing surfaces of a session.
//
// A surface that persists a change publishes after the remote store confirms it; every
// surface that shows a derived view subscribes and re-resolves on notification. The bus
// replaces window-wide broadcast events with an explicit, injectable value.
package bus

import (
	"fmt"
	"log/slog"
	"sync"
)

type Topic string

const (
	TopicDesignChanged    Topic = "design.changed"
	TopicPortfolioChanged Topic = "portfolio.changed"
)

func (t Topic) Valid() bool {
	return t == TopicDesignChanged || t == TopicPortfolioChanged
}

// Event is delivered to subscribers.
type Event struct {
	Topic       Topic
	PortfolioID string
}

type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

type Bus struct {
	logger *slog.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[Topic][]subscription
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		logger: logger,
		subs:   make(map[Topic][]subscription),
	}
}

// Subscribe registers h for topic and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	if !topic.Valid() {
		b.logger.Warn("subscribe to unknown topic ignored", slog.String("topic", string(topic)))
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

// Publish calls every handler of topic in subscription order. Handlers run on the calling
// goroutine after the bus lock is released, so they may subscribe or publish themselves.
func (b *Bus) Publish(topic Topic, portfolioID string) {
	if !topic.Valid() {
		b.logger.Warn("publish to unknown topic ignored", slog.String("topic", string(topic)))
		return
	}

	b.mu.Lock()
	handlers := make([]Handler, len(b.subs[topic]))
	for i, s := range b.subs[topic] {
		handlers[i] = s.handler
	}
	b.mu.Unlock()

	ev := Event{Topic: topic, PortfolioID: portfolioID}
	for _, h := range handlers {
		b.deliver(h, ev)
	}
}

// Subscribers returns the number of handlers registered for topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

func (b *Bus) deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("bus handler panicked",
				slog.String("topic", string(ev.Topic)),
				slog.String("error", fmt.Sprint(r)),
			)
		}
	}()
	h(ev)
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

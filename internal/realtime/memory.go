package realtime

import (
	"context"
	"log/slog"
	"sync"
)

const subscriptionBuffer = 256

// MemoryBroker is the in-process Broker used by tests and single-node
// deployments. Delivery happens under the broker lock, which is what makes
// the per-topic FIFO guarantee hold without a goroutine per topic.
type MemoryBroker struct {
	mu     sync.Mutex
	topics map[string][]*Subscription
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{topics: make(map[string][]*Subscription)}
}

func (b *MemoryBroker) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBrokerClosed
	}
	// Snapshot: eviction below mutates the topic slice.
	subs := append([]*Subscription(nil), b.topics[ev.Topic]...)
	for _, sub := range subs {
		select {
		case sub.ch <- ev:
		default:
			// Slow consumer: dropping a single event would silently break
			// the per-topic ordering contract, so evict the subscriber
			// instead and let it resubscribe from a fresh snapshot.
			slog.Warn("realtime: evicting slow subscriber", "topic", ev.Topic)
			b.detach(sub)
			close(sub.ch)
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(topic string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}
	sub := newSubscription(topic, subscriptionBuffer, b.remove)
	b.topics[topic] = append(b.topics[topic], sub)
	return sub, nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.topics {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	b.topics = make(map[string][]*Subscription)
	return nil
}

func (b *MemoryBroker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if b.detach(sub) {
		close(sub.ch)
	}
}

// detach unlinks sub from its topic. Caller holds b.mu.
func (b *MemoryBroker) detach(sub *Subscription) bool {
	subs := b.topics[sub.topic]
	for i, s := range subs {
		if s == sub {
			b.topics[sub.topic] = append(subs[:i], subs[i+1:]...)
			if len(b.topics[sub.topic]) == 0 {
				delete(b.topics, sub.topic)
			}
			return true
		}
	}
	return false
}

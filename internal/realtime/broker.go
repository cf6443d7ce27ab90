// Package realtime is the push layer behind every live view: chat fan-out,
// friend-list refresh, and the pending-request badge. A subscription on a
// topic receives events in publish order for that topic; no ordering is
// guaranteed across topics. Consumers own their subscriptions and must
// cancel them — a dangling subscription keeps delivering after the client
// has moved on.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

var ErrBrokerClosed = errors.New("realtime: broker closed")

// Event kinds carried on the topics below.
const (
	KindMessage        = "message"
	KindFriendAdded    = "friend_added"
	KindRequestCreated = "request_created"
	KindRequestRemoved = "request_removed"
)

// Topic constructors. Channel ids and identity strings contain no NATS
// subject metacharacters, so these double as NATS subjects unchanged.
func ChatTopic(channelID string) string { return "chat." + channelID }
func FriendsTopic(uid string) string { return "friends." + uid }
func IncomingTopic(uid string) string { return "requests.in." + uid }
func OutgoingTopic(uid string) string { return "requests.out." + uid }

type Event struct {
	Topic   string          `json:"topic"`
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Broker interface {
	// Publish delivers ev to every current subscriber of ev.Topic, in
	// publish order relative to other events on the same topic.
	Publish(ctx context.Context, ev Event) error
	Subscribe(topic string) (*Subscription, error)
	Close() error
}

// Subscription is a scoped resource: C() yields events until Cancel is
// called, after which the channel is closed and nothing further arrives.
type Subscription struct {
	topic  string
	ch     chan Event
	once   sync.Once
	cancel func(*Subscription)
}

func newSubscription(topic string, buf int, cancel func(*Subscription)) *Subscription {
	return &Subscription{
		topic:  topic,
		ch:     make(chan Event, buf),
		cancel: cancel,
	}
}

func (s *Subscription) Topic() string { return s.topic }
func (s *Subscription) C() <-chan Event { return s.ch }

// Cancel detaches the subscription and closes its channel. Idempotent.
func (s *Subscription) Cancel() {
	s.once.Do(func() { s.cancel(s) })
}

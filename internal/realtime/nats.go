package realtime

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// NATSBroker carries the Broker contract over NATS subjects so multiple
// linkup nodes share one fan-out plane. The connection is owned by the
// caller; closing the broker does not close it.
//
// NATS delivers messages on one subscription in publish order per subject,
// which is exactly the per-topic FIFO the contract requires.
type NATSBroker struct {
	nc *nats.Conn
}

func NewNATSBroker(nc *nats.Conn) *NATSBroker {
	return &NATSBroker{nc: nc}
}

func (b *NATSBroker) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "realtime: encode event")
	}
	return errors.Wrap(b.nc.Publish(ev.Topic, data), "realtime: nats publish")
}

func (b *NATSBroker) Subscribe(topic string) (*Subscription, error) {
	raw := make(chan *nats.Msg, subscriptionBuffer)
	natsSub, err := b.nc.ChanSubscribe(topic, raw)
	if err != nil {
		return nil, errors.Wrap(err, "realtime: nats subscribe")
	}

	done := make(chan struct{})
	sub := newSubscription(topic, subscriptionBuffer, func(*Subscription) {
		_ = natsSub.Unsubscribe()
		close(done)
	})

	// The forwarding goroutine is the only writer and the only closer of
	// sub.ch, so cancellation cannot race a send.
	go func() {
		defer close(sub.ch)
		for {
			select {
			case <-done:
				return
			case m, ok := <-raw:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal(m.Data, &ev); err != nil {
					continue
				}
				select {
				case sub.ch <- ev:
				case <-done:
					return
				}
			}
		}
	}()
	return sub, nil
}

func (b *NATSBroker) Close() error { return nil }

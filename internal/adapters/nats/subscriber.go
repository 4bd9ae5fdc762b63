package natsadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
)

// Subscriber implements ports.EventSubscriber. Invalidations are fanned out
// to every process with a plain subscription, skipping the subscriber's own
// events.
type Subscriber struct {
	conn   *nats.Conn
	origin string

	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber on an existing connection.
func NewSubscriber(conn *nats.Conn, origin string) *Subscriber {
	return &Subscriber{conn: conn, origin: origin}
}

func (s *Subscriber) SubscribeInvalidations(ctx context.Context, handler func(ctx context.Context, sourceKey string) error) error {
	sub, err := s.conn.Subscribe(SubjectDatasetInvalidated, func(msg *nats.Msg) {
		var ev DatasetEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			slog.Warn("malformed dataset event", "subject", msg.Subject, "error", err)
			return
		}
		if ev.Origin == s.origin {
			return
		}
		if err := handler(ctx, ev.Source); err != nil {
			slog.Warn("invalidation handler failed", "source", ev.Source, "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()
	return nil
}

// Close unsubscribes; the connection is owned by the caller.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	s.subs = nil
}

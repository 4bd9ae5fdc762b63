package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

// Subjects carrying dataset lifecycle events.
const (
	SubjectDatasetLoaded      = "immo.dataset.loaded"
	SubjectDatasetInvalidated = "immo.dataset.invalidated"
	SubjectDatasetAll         = "immo.dataset.>"

	streamName = "IMMO_DATASET"
)

// DatasetEvent is the JSON payload of every dataset subject.
type DatasetEvent struct {
	Type       string    `json:"type"` // "loaded" | "invalidated"
	Source     string    `json:"source"`
	SnapshotID string    `json:"snapshot_id,omitempty"`
	Rows       int       `json:"rows,omitempty"`
	RawRows    int       `json:"raw_rows,omitempty"`
	Origin     string    `json:"origin"` // instance that emitted the event
	At         time.Time `json:"at"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	origin string
}

// NewPublisher connects to NATS and ensures the dataset stream exists.
// origin tags every event so a process can ignore its own messages.
func NewPublisher(url, origin string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{SubjectDatasetAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		MaxMsgs:   10000,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js, origin: origin}, nil
}

func (p *Publisher) PublishDatasetLoaded(ctx context.Context, snap *domain.Snapshot) error {
	return p.publish(ctx, SubjectDatasetLoaded, DatasetEvent{
		Type:       "loaded",
		Source:     snap.SourceKey,
		SnapshotID: snap.ID,
		Rows:       len(snap.Dataset),
		RawRows:    snap.RawRows,
	})
}

func (p *Publisher) PublishDatasetInvalidated(ctx context.Context, sourceKey string) error {
	return p.publish(ctx, SubjectDatasetInvalidated, DatasetEvent{
		Type:   "invalidated",
		Source: sourceKey,
	})
}

func (p *Publisher) publish(ctx context.Context, subject string, ev DatasetEvent) error {
	ev.Origin = p.origin
	ev.At = time.Now().UTC()
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Conn exposes the underlying connection, e.g. for the WebSocket relay.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// Connect opens a NATS connection that keeps reconnecting.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

package ports

import (
	"context"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

// EventPublisher publishes dataset lifecycle events to a message broker.
type EventPublisher interface {
	PublishDatasetLoaded(ctx context.Context, snap *domain.Snapshot) error
	PublishDatasetInvalidated(ctx context.Context, sourceKey string) error
}

// EventSubscriber receives invalidation requests from other processes.
type EventSubscriber interface {
	SubscribeInvalidations(ctx context.Context, handler func(ctx context.Context, sourceKey string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/core/usecases"
)

// DatasetManager exposes the dataset lifecycle to the HTTP layer.
type DatasetManager interface {
	SourceKey() string
	Cached() *domain.Snapshot
	Reload(ctx context.Context) (*domain.Snapshot, error)
}

// Pinger is satisfied by the L2 cache client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Dashboard *usecases.DashboardService
	Datasets  DatasetManager
	NATS      *nats.Conn
	Cache     Pinger
}

package ports

import (
	"context"
	"io"

	"github.com/samirrijal/immoreims/internal/core/domain"
)

// DatasetSource fetches the raw dataset bytes.
type DatasetSource interface {
	// Key identifies the source for memoization (e.g. its URL).
	Key() string
	Fetch(ctx context.Context) ([]byte, error)
}

// DatasetDecoder turns raw dataset bytes into rows.
type DatasetDecoder interface {
	Decode(r io.Reader) ([]domain.SourceRow, error)
}

// DatasetProvider hands out the current dataset snapshot.
type DatasetProvider interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}

package usecases

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/samirrijal/immoreims/internal/core/domain"
	"github.com/samirrijal/immoreims/internal/core/ports"
	"github.com/samirrijal/immoreims/internal/pkg/metrics"
	"github.com/samirrijal/immoreims/internal/pkg/telemetry"
)

// DatasetLoader fetches the dataset once per source and memoizes the result
// until it is explicitly invalidated.
type DatasetLoader struct {
	source    ports.DatasetSource
	decoder   ports.DatasetDecoder
	cache     ports.CacheService
	publisher ports.EventPublisher
	cacheTTL  int // seconds

	mu    sync.RWMutex
	snap  *domain.Snapshot
	gen   uint64 // bumped on every invalidation
	group singleflight.Group
	now   func() time.Time
}

// NewDatasetLoader creates a new DatasetLoader. cache and publisher may be nil.
func NewDatasetLoader(
	source ports.DatasetSource,
	decoder ports.DatasetDecoder,
	cache ports.CacheService,
	publisher ports.EventPublisher,
	cacheTTLSeconds int,
) *DatasetLoader {
	return &DatasetLoader{
		source:    source,
		decoder:   decoder,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTLSeconds,
		now:       time.Now,
	}
}

// SourceKey identifies the dataset the loader serves.
func (l *DatasetLoader) SourceKey() string { return l.source.Key() }

// Cached returns the current snapshot without loading, or nil.
func (l *DatasetLoader) Cached() *domain.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// Load returns the memoized snapshot, fetching it on first use. Concurrent
// callers share a single fetch.
func (l *DatasetLoader) Load(ctx context.Context) (*domain.Snapshot, error) {
	if snap := l.Cached(); snap != nil {
		return snap, nil
	}

	v, err, _ := l.group.Do(l.source.Key(), func() (interface{}, error) {
		if snap := l.Cached(); snap != nil {
			return snap, nil
		}
		// The shared fetch must not die with the first caller's request.
		return l.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Snapshot), nil
}

// Invalidate drops the memoized snapshot and its cached source bytes, then
// notifies other processes.
func (l *DatasetLoader) Invalidate(ctx context.Context) error {
	key := l.source.Key()
	l.forget()
	metrics.DatasetInvalidations.WithLabelValues("local").Inc()

	if l.cache != nil {
		if err := l.cache.Delete(ctx, rawCacheKey(key)); err != nil {
			slog.Warn("dataset cache delete failed", "source", key, "error", err)
		}
	}
	if l.publisher != nil {
		if err := l.publisher.PublishDatasetInvalidated(ctx, key); err != nil {
			return fmt.Errorf("publish invalidation: %w", err)
		}
	}
	return nil
}

// Forget drops the memoized snapshot when sourceKey matches this loader's
// source. It is the handler for invalidations coming from other processes.
func (l *DatasetLoader) Forget(ctx context.Context, sourceKey string) error {
	if sourceKey != "" && sourceKey != l.source.Key() {
		return nil
	}
	l.forget()
	metrics.DatasetInvalidations.WithLabelValues("remote").Inc()
	slog.InfoContext(ctx, "dataset snapshot dropped", "source", l.source.Key())
	return nil
}

// Reload invalidates the snapshot and loads a fresh one.
func (l *DatasetLoader) Reload(ctx context.Context) (*domain.Snapshot, error) {
	if err := l.Invalidate(ctx); err != nil {
		slog.Warn("dataset invalidation incomplete", "error", err)
	}
	return l.Load(ctx)
}

// forget drops the snapshot and detaches any in-flight load, so callers
// arriving afterwards start a fresh fetch and the stale one is not memoized.
func (l *DatasetLoader) forget() {
	l.mu.Lock()
	l.snap = nil
	l.gen++
	l.mu.Unlock()
	l.group.Forget(l.source.Key())
}

func (l *DatasetLoader) generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gen
}

func (l *DatasetLoader) load(ctx context.Context) (*domain.Snapshot, error) {
	key := l.source.Key()
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanDatasetLoad)
	defer span.End()
	span.SetAttributes(attribute.String("dataset.source", key))

	gen := l.generation()
	start := time.Now()
	snap, err := l.fetchAndDecode(ctx, key, gen)
	metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DatasetLoads.WithLabelValues(outcome(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "dataset load failed", "source", key, "error", err)
		return nil, err
	}
	metrics.DatasetLoads.WithLabelValues("ok").Inc()
	span.SetAttributes(
		attribute.Int("dataset.raw_rows", snap.RawRows),
		attribute.Int("dataset.rows", len(snap.Dataset)),
	)

	l.mu.Lock()
	stale := l.gen != gen
	if !stale {
		l.snap = snap
	}
	l.mu.Unlock()
	if stale {
		// Invalidated mid-flight: hand the rows to the callers already
		// waiting but do not keep them.
		slog.InfoContext(ctx, "dataset load superseded by invalidation", "source", key, "snapshot", snap.ID)
		return snap, nil
	}
	metrics.DatasetRows.Set(float64(len(snap.Dataset)))
	metrics.DatasetDroppedRows.Set(float64(snap.DroppedRows))

	slog.InfoContext(ctx, "dataset loaded",
		"source", key,
		"snapshot", snap.ID,
		"raw_rows", snap.RawRows,
		"rows", len(snap.Dataset),
		"dropped", snap.DroppedRows,
		"duration", time.Since(start).String(),
	)

	if l.publisher != nil {
		if err := l.publisher.PublishDatasetLoaded(ctx, snap); err != nil {
			slog.Warn("publish dataset loaded", "error", err)
		}
	}
	return snap, nil
}

func (l *DatasetLoader) fetchAndDecode(ctx context.Context, key string, gen uint64) (*domain.Snapshot, error) {
	raw, fromCache, err := l.fetch(ctx, key, gen)
	if err != nil {
		return nil, err
	}

	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanDatasetDecode)
	rows, err := l.decoder.Decode(bytes.NewReader(raw))
	span.End()
	if err != nil {
		if fromCache && l.cache != nil {
			_ = l.cache.Delete(ctx, rawCacheKey(key))
		}
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}

	ds := make(domain.Dataset, 0, len(rows))
	for _, row := range rows {
		if row.Latitude == nil || row.Longitude == nil {
			continue
		}
		t := row.Transaction
		t.Location = domain.GeoPoint{Lat: *row.Latitude, Lon: *row.Longitude}
		ds = append(ds, t)
	}

	return &domain.Snapshot{
		ID:          uuid.NewString(),
		SourceKey:   key,
		Dataset:     ds,
		RawRows:     len(rows),
		DroppedRows: len(rows) - len(ds),
		LoadedAt:    l.now().UTC(),
	}, nil
}

// fetch reads the raw bytes from the L2 cache or the source.
func (l *DatasetLoader) fetch(ctx context.Context, key string, gen uint64) ([]byte, bool, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanDatasetFetch)
	defer span.End()

	cacheKey := rawCacheKey(key)
	if l.cache != nil {
		if data, err := l.cache.Get(ctx, cacheKey); err == nil && len(data) > 0 {
			metrics.CacheHits.WithLabelValues("dataset_raw").Inc()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return data, true, nil
		}
		metrics.CacheMisses.WithLabelValues("dataset_raw").Inc()
	}

	data, err := l.source.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}
		return nil, false, err
	}

	if l.cache != nil && l.cacheTTL > 0 && l.generation() == gen {
		if err := l.cache.Set(ctx, cacheKey, data, l.cacheTTL); err != nil {
			slog.Warn("dataset cache store failed", "source", key, "error", err)
		}
	}
	return data, false, nil
}

func rawCacheKey(sourceKey string) string {
	h := sha256.Sum256([]byte(sourceKey))
	return "dataset:raw:" + hex.EncodeToString(h[:8])
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, domain.ErrSchema):
		return "schema_error"
	default:
		return "error"
	}
}

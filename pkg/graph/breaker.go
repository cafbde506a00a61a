package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/graphrag/pkg/types"
)

// BreakerStore wraps a Store with a circuit breaker so that a struggling
// graph backend fails fast instead of stalling every search. When the
// breaker is open, calls return gobreaker.ErrOpenState immediately; the
// search layer treats that like any other strategy failure and degrades.
type BreakerStore struct {
	inner   Store
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// BreakerSettings configures the circuit breaker around a Store.
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that trip the
	// breaker open.
	MaxFailures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// DefaultBreakerSettings trips after 5 consecutive failures and probes
// again after 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	}
}

// NewBreakerStore decorates a Store with a circuit breaker.
func NewBreakerStore(inner Store, settings BreakerSettings, logger *slog.Logger) *BreakerStore {
	if logger == nil {
		logger = slog.Default()
	}
	if settings.MaxFailures == 0 {
		settings.MaxFailures = DefaultBreakerSettings().MaxFailures
	}
	if settings.Timeout <= 0 {
		settings.Timeout = DefaultBreakerSettings().Timeout
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "graph-store",
		Timeout: settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("graph store breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerStore{inner: inner, breaker: cb, logger: logger}
}

func (b *BreakerStore) execute(op func() (any, error)) (any, error) {
	return b.breaker.Execute(op)
}

func (b *BreakerStore) UpsertEntity(ctx context.Context, entity *types.Entity) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.UpsertEntity(ctx, entity)
	})
	return err
}

func (b *BreakerStore) UpsertEntities(ctx context.Context, entities []*types.Entity) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.UpsertEntities(ctx, entities)
	})
	return err
}

func (b *BreakerStore) UpsertRelationship(ctx context.Context, rel *types.Relationship) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.UpsertRelationship(ctx, rel)
	})
	return err
}

func (b *BreakerStore) UpsertRelationships(ctx context.Context, rels []*types.Relationship) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.UpsertRelationships(ctx, rels)
	})
	return err
}

func (b *BreakerStore) FindEntitiesByName(ctx context.Context, names []string, fuzzy bool, limit int) ([]EntityRecord, error) {
	result, err := b.execute(func() (any, error) {
		return b.inner.FindEntitiesByName(ctx, names, fuzzy, limit)
	})
	if err != nil {
		return nil, err
	}
	records, _ := result.([]EntityRecord)
	return records, nil
}

func (b *BreakerStore) FindRelatedChunks(ctx context.Context, entityIDs []string, maxDepth, limit int) ([]RelatedChunk, error) {
	result, err := b.execute(func() (any, error) {
		return b.inner.FindRelatedChunks(ctx, entityIDs, maxDepth, limit)
	})
	if err != nil {
		return nil, err
	}
	chunks, _ := result.([]RelatedChunk)
	return chunks, nil
}

func (b *BreakerStore) CreateIndexes(ctx context.Context) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.CreateIndexes(ctx)
	})
	return err
}

func (b *BreakerStore) Stats(ctx context.Context) (*Stats, error) {
	result, err := b.execute(func() (any, error) {
		return b.inner.Stats(ctx)
	})
	if err != nil {
		return nil, err
	}
	stats, _ := result.(*Stats)
	return stats, nil
}

// Close bypasses the breaker; shutdown should always reach the backend.
func (b *BreakerStore) Close(ctx context.Context) error {
	return b.inner.Close(ctx)
}

var _ Store = (*BreakerStore)(nil)

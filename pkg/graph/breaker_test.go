package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	Store
	err   error
	calls int
}

func (f *flakyStore) FindEntitiesByName(ctx context.Context, names []string, fuzzy bool, limit int) ([]EntityRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []EntityRecord{{ID: "e1", Name: names[0]}}, nil
}

func (f *flakyStore) Close(ctx context.Context) error { return nil }

func TestBreakerStorePassesThrough(t *testing.T) {
	inner := &flakyStore{}
	store := NewBreakerStore(inner, DefaultBreakerSettings(), nil)

	records, err := store.FindEntitiesByName(context.Background(), []string{"Marie Curie"}, true, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Marie Curie", records[0].Name)
}

func TestBreakerStoreOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyStore{err: errors.New("connection refused")}
	store := NewBreakerStore(inner, BreakerSettings{MaxFailures: 2, Timeout: time.Minute}, nil)

	ctx := context.Background()
	_, err := store.FindEntitiesByName(ctx, []string{"a"}, true, 10)
	require.Error(t, err)
	_, err = store.FindEntitiesByName(ctx, []string{"a"}, true, 10)
	require.Error(t, err)

	// Breaker is open now; the backend must not be called again.
	callsBefore := inner.calls
	_, err = store.FindEntitiesByName(ctx, []string{"a"}, true, 10)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, callsBefore, inner.calls)
}

func TestBreakerStoreCloseBypassesBreaker(t *testing.T) {
	inner := &flakyStore{err: errors.New("down")}
	store := NewBreakerStore(inner, BreakerSettings{MaxFailures: 1, Timeout: time.Minute}, nil)

	ctx := context.Background()
	_, _ = store.FindEntitiesByName(ctx, []string{"a"}, true, 10)
	assert.NoError(t, store.Close(ctx))
}

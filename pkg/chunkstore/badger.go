// Package chunkstore persists chunk content and metadata in an embedded
// BadgerDB key-value store. Search strategies return chunk IDs; this store
// turns those IDs back into retrievable content.
package chunkstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/graphrag/pkg/types"
)

const chunkPrefix = "chunk:"

// ErrNotFound is returned by Get when the chunk ID has no record.
var ErrNotFound = errors.New("chunk not found")

// Store persists chunks keyed by ID.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens or creates a Badger database at path. An empty path opens an
// in-memory database, which tests and ephemeral deployments use.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk store: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a single chunk, replacing any previous record with the same ID.
func (s *Store) Put(ctx context.Context, chunk *types.Chunk) error {
	if chunk == nil {
		return fmt.Errorf("cannot store nil chunk")
	}
	if err := chunk.Validate(); err != nil {
		return err
	}
	return s.PutBatch(ctx, []*types.Chunk{chunk})
}

// PutBatch stores chunks in a single write transaction.
func (s *Store) PutBatch(ctx context.Context, chunks []*types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk == nil {
				continue
			}
			if err := chunk.Validate(); err != nil {
				return err
			}
			data, err := json.Marshal(chunk)
			if err != nil {
				return fmt.Errorf("failed to encode chunk %s: %w", chunk.ID, err)
			}
			if err := txn.Set(chunkKey(chunk.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store %d chunks: %w", len(chunks), err)
	}

	s.logger.Debug("stored chunks", "count", len(chunks))
	return nil
}

// Get returns a chunk by ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*types.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var chunk types.Chunk
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &chunk)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to load chunk %s: %w", id, err)
	}
	return &chunk, nil
}

// GetBatch returns the chunks for the given IDs in input order. IDs with no
// record are skipped rather than failing the whole batch.
func (s *Store) GetBatch(ctx context.Context, ids []string) ([]*types.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunks := make([]*types.Chunk, 0, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(chunkKey(id))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					s.logger.Debug("chunk missing from store", "chunk_id", id)
					continue
				}
				return err
			}
			var chunk types.Chunk
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &chunk)
			}); err != nil {
				return err
			}
			chunks = append(chunks, &chunk)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load chunk batch: %w", err)
	}
	return chunks, nil
}

// Delete removes a chunk by ID. Deleting a missing chunk is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(chunkKey(id))
	})
	if err != nil {
		return fmt.Errorf("failed to delete chunk %s: %w", id, err)
	}
	return nil
}

// ForEach visits every stored chunk. The callback returning an error stops
// the iteration and propagates the error.
func (s *Store) ForEach(ctx context.Context, fn func(*types.Chunk) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var chunk types.Chunk
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &chunk)
			}); err != nil {
				return err
			}
			if err := fn(&chunk); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

func chunkKey(id string) []byte {
	return []byte(chunkPrefix + id)
}

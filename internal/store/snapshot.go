// Package store persists the last settled results locally so a restarted
// calculator can show prices before the first recalculation. Persistence
// is best-effort: failures are logged and never interrupt calculation.
package store

import (
	"encoding/json"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"netquote/pkg/api"
)

const resultPrefix = "result/"

// SnapshotStore is a Badger-backed snapshot of per-component results.
type SnapshotStore struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) the snapshot database at dir. An empty dir
// opens an in-memory store, used by tests and --no-snapshot runs.
func Open(dir string, logger *slog.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &SnapshotStore{db: db, log: logger}, nil
}

// SaveResult stores a component's settled result. Errors are logged and
// swallowed.
func (s *SnapshotStore) SaveResult(componentID string, result api.CalculationResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.log.Warn("snapshot encode failed", "component", componentID, "error", err)
		return
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(resultPrefix+componentID), payload)
	})
	if err != nil {
		s.log.Warn("snapshot write failed", "component", componentID, "error", err)
	}
}

// LoadResults returns every persisted result. Undecodable entries are
// skipped with a warning.
func (s *SnapshotStore) LoadResults() map[string]api.CalculationResult {
	out := make(map[string]api.CalculationResult)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(resultPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			componentID := strings.TrimPrefix(string(item.Key()), resultPrefix)
			err := item.Value(func(val []byte) error {
				var r api.CalculationResult
				if err := json.Unmarshal(val, &r); err != nil {
					s.log.Warn("snapshot decode failed", "component", componentID, "error", err)
					return nil
				}
				out[componentID] = r
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn("snapshot read failed", "error", err)
	}
	return out
}

// Close flushes and closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

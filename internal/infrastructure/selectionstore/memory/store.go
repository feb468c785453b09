package memory

import (
	"context"
	"sync"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/domain/selection"
	"github.com/riskibarqy/whereismatch/internal/infrastructure/selectionstore"
)

// Store keeps encoded selections in process memory. Used when no store path
// is configured and in tests.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ selection.Repository = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Load(_ context.Context, dim catalog.Dimension) []int64 {
	s.mu.RLock()
	raw := s.data[dim.StorageKey()]
	s.mu.RUnlock()

	ids, err := selectionstore.DecodeIDs(raw)
	if err != nil {
		return nil
	}
	return ids
}

func (s *Store) Save(_ context.Context, dim catalog.Dimension, ids []int64) error {
	key := dim.StorageKey()
	if key == "" {
		return crerr.Newf("unknown dimension %q", dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		delete(s.data, key)
		return nil
	}
	raw, err := selectionstore.EncodeIDs(ids)
	if err != nil {
		return err
	}
	s.data[key] = raw
	return nil
}

// Keys returns the stored keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for key := range s.data {
		out = append(out, key)
	}
	return out
}

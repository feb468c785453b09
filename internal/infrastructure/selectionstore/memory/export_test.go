package memory

import "github.com/riskibarqy/whereismatch/internal/domain/catalog"

// PutRaw stores an unvalidated payload, e.g. state written by an older build.
func (s *Store) PutRaw(dim catalog.Dimension, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[dim.StorageKey()] = append([]byte(nil), raw...)
}

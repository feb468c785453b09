package bolt

import (
	"go.etcd.io/bbolt"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
)

// PutRaw writes an unvalidated payload under the dimension key.
func (s *Store) PutRaw(dim catalog.Dimension, raw []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSelections)
		if err != nil {
			return err
		}
		return b.Put([]byte(dim.StorageKey()), raw)
	})
}

// Has reports whether a key is stored for dim.
func (s *Store) Has(dim catalog.Dimension) bool {
	var ok bool
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketSelections); b != nil {
			ok = b.Get([]byte(dim.StorageKey())) != nil
		}
		return nil
	})
	return ok
}

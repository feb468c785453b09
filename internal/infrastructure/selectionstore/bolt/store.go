package bolt

import (
	"context"
	"os"
	"path/filepath"
	"time"

	crerr "github.com/cockroachdb/errors"
	bbolt "go.etcd.io/bbolt"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
	"github.com/riskibarqy/whereismatch/internal/domain/selection"
	"github.com/riskibarqy/whereismatch/internal/infrastructure/selectionstore"
	"github.com/riskibarqy/whereismatch/internal/platform/logging"
)

var bucketSelections = []byte("selections")

// Store keeps selections in a bbolt file, one JSON array per dimension key.
type Store struct {
	db     *bbolt.DB
	logger *logging.Logger
}

var _ selection.Repository = (*Store)(nil)

// Open creates the parent directory and the bucket when missing.
func Open(path string, logger *logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, crerr.Wrapf(err, "create selection store dir")
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, crerr.Wrapf(err, "open selection store %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSelections)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "create selections bucket")
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(ctx context.Context, dim catalog.Dimension) []int64 {
	key := dim.StorageKey()
	if key == "" {
		return nil
	}

	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSelections)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "read stored selection failed", "key", key, "error", err)
		return nil
	}

	ids, err := selectionstore.DecodeIDs(raw)
	if err != nil {
		s.logger.DebugContext(ctx, "ignoring malformed stored selection", "key", key, "error", err)
		return nil
	}
	return ids
}

func (s *Store) Save(_ context.Context, dim catalog.Dimension, ids []int64) error {
	key := dim.StorageKey()
	if key == "" {
		return crerr.Newf("unknown dimension %q", dim)
	}

	var raw []byte
	if len(ids) > 0 {
		encoded, err := selectionstore.EncodeIDs(ids)
		if err != nil {
			return err
		}
		raw = encoded
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketSelections)
		if err != nil {
			return err
		}
		if raw == nil {
			return b.Delete([]byte(key))
		}
		return b.Put([]byte(key), raw)
	})
	if err != nil {
		return crerr.Wrapf(err, "save selection %s", key)
	}
	return nil
}

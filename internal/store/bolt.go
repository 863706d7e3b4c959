package store

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"mercado/internal/models"
)

var productsBucket = []byte("products")

// BoltStore keeps one record per product in a bbolt bucket. Keys come from
// the bucket sequence in big-endian form, so cursor order is insertion order
// and a write never lands on an existing key.
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore opens (or creates) the bbolt file at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create data directory")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt file %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(productsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create products bucket")
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(_ context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(productsBucket).ForEach(func(k, v []byte) error {
			var p models.Product
			if err := docJSON.Unmarshal(v, &p); err != nil {
				zap.S().Warnw("skipping malformed product record",
					"key", binary.BigEndian.Uint64(k), "error", err)
				return nil
			}
			products = append(products, p)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "read products")
	}
	return products, nil
}

func (s *BoltStore) Save(_ context.Context, products []models.Product) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(productsBucket); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		b, err := tx.CreateBucket(productsBucket)
		if err != nil {
			return err
		}
		for _, p := range products {
			if err := putProduct(b, p); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "save products")
}

// Create runs inside bbolt's single writer transaction.
func (s *BoltStore) Create(_ context.Context, p models.Product) (models.Product, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(productsBucket)
		var stored []models.Product
		if err := b.ForEach(func(_, v []byte) error {
			var q models.Product
			if docJSON.Unmarshal(v, &q) == nil {
				stored = append(stored, q)
			}
			return nil
		}); err != nil {
			return err
		}
		p.ID = len(stored) + 1
		if hasID(stored, p.ID) {
			return errors.Wrapf(ErrDuplicateID, "id %d", p.ID)
		}
		return putProduct(b, p)
	})
	if err != nil {
		return models.Product{}, errors.Wrap(err, "create product")
	}
	return p, nil
}

func (s *BoltStore) Seed(_ context.Context, products []models.Product) (bool, error) {
	seeded := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(productsBucket)
		if k, _ := b.Cursor().First(); k != nil {
			return nil
		}
		for _, p := range products {
			if err := putProduct(b, p); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "seed products")
	}
	return seeded, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func putProduct(b *bolt.Bucket, p models.Product) error {
	v, err := docJSON.Marshal(p)
	if err != nil {
		return err
	}
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return b.Put(key, v)
}

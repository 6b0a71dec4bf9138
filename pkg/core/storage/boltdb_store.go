package storage

import (
	"bytes"

	"go.etcd.io/bbolt"
)

// boltBucket is the single top-level bucket all keys live under; the
// KeyPrefix byte already partitions the logical namespace so there is no
// need for bbolt-level sub-buckets.
var boltBucket = []byte("neo")

// BoltDBOptions configures the bbolt-backed Store.
type BoltDBOptions struct {
	FilePath string
}

// BoltDBStore is a Store backed by go.etcd.io/bbolt, the default on-disk
// engine (spec.md §1 treats the KV engine as a replaceable collaborator;
// this is the teacher's default choice).
type BoltDBStore struct {
	db *bbolt.DB
}

// NewBoltDBStore opens (creating if necessary) a bbolt-backed store.
func NewBoltDBStore(cfg BoltDBOptions) (*BoltDBStore, error) {
	db, err := bbolt.Open(cfg.FilePath, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltDBStore{db: db}, nil
}

// Get implements the Store interface.
func (s *BoltDBStore) Get(key []byte) (v []byte, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltBucket)
		val := b.Get(key)
		if val == nil {
			return ErrKeyNotFound
		}
		v = append([]byte{}, val...)
		return nil
	})
	return
}

// Put implements the Store interface.
func (s *BoltDBStore) Put(key, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, value)
	})
}

// Delete implements the Store interface.
func (s *BoltDBStore) Delete(key []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Delete(key)
	})
}

// PutChangeSet implements the Store interface as a single bbolt
// transaction, giving us the all-or-nothing commit spec.md §4.3 requires.
func (s *BoltDBStore) PutChangeSet(puts map[string][]byte, dels map[string][]byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(boltBucket)
		for k, v := range puts {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		for k := range dels {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Seek implements the ReadOnlyStore interface.
func (s *BoltDBStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	_ = s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		prefix := append(append([]byte{}, rng.Prefix...), rng.Start...)
		if !rng.Backwards {
			for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, rng.Prefix); k, v = c.Next() {
				if !f(k, v) {
					return nil
				}
			}
			return nil
		}
		// Backwards: seek to the first key >= prefix+0xff.., then walk Prev.
		upper := append(append([]byte{}, rng.Prefix...), 0xff)
		k, v := c.Seek(upper)
		if k == nil {
			k, v = c.Last()
		}
		for ; k != nil && bytes.HasPrefix(k, rng.Prefix); k, v = c.Prev() {
			if bytes.Compare(k, prefix) <= 0 {
				if !f(k, v) {
					return nil
				}
			}
		}
		return nil
	})
}

// Close implements the Store interface.
func (s *BoltDBStore) Close() error {
	return s.db.Close()
}

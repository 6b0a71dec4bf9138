package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDBOptions configures the goleveldb-backed Store, exercised as an
// alternate engine behind the same storage.Store contract (spec.md §1 keeps
// the KV engine itself out of scope, but the abstraction must tolerate more
// than one implementation).
type LevelDBOptions struct {
	DataDirectoryPath string
}

// LevelDBStore is a Store backed by github.com/syndtr/goleveldb.
type LevelDBStore struct {
	db *leveldb.DB
}

// NewLevelDBStore opens (creating if necessary) a goleveldb-backed store.
func NewLevelDBStore(cfg LevelDBOptions) (*LevelDBStore, error) {
	o := &opt.Options{
		Filter: filter.NewBloomFilter(10),
	}
	db, err := leveldb.OpenFile(cfg.DataDirectoryPath, o)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

// Get implements the Store interface.
func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	v, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrKeyNotFound
	}
	return v, err
}

// Put implements the Store interface.
func (s *LevelDBStore) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

// Delete implements the Store interface.
func (s *LevelDBStore) Delete(key []byte) error {
	return s.db.Delete(key, nil)
}

// PutChangeSet implements the Store interface as a single leveldb batch.
func (s *LevelDBStore) PutChangeSet(puts map[string][]byte, dels map[string][]byte) error {
	b := new(leveldb.Batch)
	for k, v := range puts {
		b.Put([]byte(k), v)
	}
	for k := range dels {
		b.Delete([]byte(k))
	}
	return s.db.Write(b, nil)
}

// Seek implements the ReadOnlyStore interface.
func (s *LevelDBStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	r := util.BytesPrefix(rng.Prefix)
	if len(rng.Start) > 0 {
		r.Start = append(append([]byte{}, rng.Prefix...), rng.Start...)
	}
	iter := s.db.NewIterator(r, nil)
	defer iter.Release()

	if !rng.Backwards {
		for iter.Next() {
			if !f(iter.Key(), iter.Value()) {
				break
			}
		}
		return
	}
	ok := iter.Last()
	for ok {
		if !f(iter.Key(), iter.Value()) {
			break
		}
		ok = iter.Prev()
	}
}

// Close implements the Store interface.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

package storage

import (
	"bytes"
	"sort"
	"sync"
)

// MemoryStore is a simple, goroutine-safe in-memory implementation of
// Store, used in tests and as the base store for the genesis/bootstrap
// path before a real engine is attached.
type MemoryStore struct {
	mut sync.RWMutex
	mem map[string][]byte
}

// NewMemoryStore creates a new, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mem: make(map[string][]byte)}
}

// Get implements the Store interface.
func (s *MemoryStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if v, ok := s.mem[string(key)]; ok {
		return v, nil
	}
	return nil, ErrKeyNotFound
}

// Put implements the Store interface.
func (s *MemoryStore) Put(key, value []byte) error {
	vcopy := make([]byte, len(value))
	copy(vcopy, value)
	s.mut.Lock()
	s.mem[string(key)] = vcopy
	s.mut.Unlock()
	return nil
}

// Delete implements the Store interface.
func (s *MemoryStore) Delete(key []byte) error {
	s.mut.Lock()
	delete(s.mem, string(key))
	s.mut.Unlock()
	return nil
}

// PutChangeSet implements the Store interface, atomically applying a batch
// of puts and deletes.
func (s *MemoryStore) PutChangeSet(puts map[string][]byte, stores map[string][]byte) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	for k, v := range puts {
		if v == nil {
			delete(s.mem, k)
			continue
		}
		s.mem[k] = v
	}
	for k := range stores {
		if stores[k] == nil {
			delete(s.mem, k)
		}
	}
	return nil
}

// Seek implements the ReadOnlyStore interface: it iterates all keys with
// the given prefix (optionally starting at Start, optionally descending),
// calling f for each until f returns false or the range is exhausted.
func (s *MemoryStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mut.RLock()
	keys := make([]string, 0, len(s.mem))
	prefix := append(append([]byte{}, rng.Prefix...), rng.Start...)
	for k := range s.mem {
		if bytes.HasPrefix([]byte(k), rng.Prefix) && bytes.Compare([]byte(k), prefix) >= 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if rng.Backwards {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	values := make(map[string][]byte, len(keys))
	for _, k := range keys {
		values[k] = s.mem[k]
	}
	s.mut.RUnlock()

	for _, k := range keys {
		if !f([]byte(k), values[k]) {
			return
		}
	}
}

// Close implements the Store interface; a no-op for memory storage.
func (s *MemoryStore) Close() error {
	return nil
}

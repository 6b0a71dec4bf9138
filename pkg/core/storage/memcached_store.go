package storage

import (
	"bytes"
	"sort"
	"sync"
)

// keyState is the staged state of a key in an uncommitted overlay: either
// a pending value, or a pending delete (nil value, deleted=true).
type keyState struct {
	value   []byte
	deleted bool
	existed bool
}

// MemCachedStore implements Snapshot from spec.md §4.3: a consistent read
// view over an underlying ReadOnlyStore (ps) plus a staging write overlay
// (MemoryStore + per-key delete tracking) that Persist/commit applies to ps
// as a single atomic batch. Not safe to share across goroutines once
// writing begins, matching the "single writer discipline" spec.md allows.
type MemCachedStore struct {
	mut     sync.RWMutex
	ps      ReadOnlyStore
	private Store // non-nil when ps also supports direct batch writes
	overlay map[string]keyState
}

// NewMemCachedStore creates a Snapshot over the given backing store.
func NewMemCachedStore(lower ReadOnlyStore) *MemCachedStore {
	s := &MemCachedStore{
		ps:      lower,
		overlay: make(map[string]keyState),
	}
	if st, ok := lower.(Store); ok {
		s.private = st
	}
	return s
}

// Get returns the overlay's pending value for key if staged, else falls
// through to the backing store.
func (s *MemCachedStore) Get(key []byte) ([]byte, error) {
	s.mut.RLock()
	st, ok := s.overlay[string(key)]
	s.mut.RUnlock()
	if ok {
		if st.deleted {
			return nil, ErrKeyNotFound
		}
		return st.value, nil
	}
	return s.ps.Get(key)
}

// Put stages a write in the overlay; it is not visible to the backing
// store until Persist/commit.
func (s *MemCachedStore) Put(key, value []byte) error {
	vcopy := make([]byte, len(value))
	copy(vcopy, value)
	_, existed := s.ps.Get(key)
	s.mut.Lock()
	s.overlay[string(key)] = keyState{value: vcopy, existed: existed == nil}
	s.mut.Unlock()
	return nil
}

// Delete stages a delete in the overlay.
func (s *MemCachedStore) Delete(key []byte) error {
	_, existed := s.ps.Get(key)
	s.mut.Lock()
	s.overlay[string(key)] = keyState{deleted: true, existed: existed == nil}
	s.mut.Unlock()
	return nil
}

// Seek iterates over the merged view of the overlay and the backing store.
func (s *MemCachedStore) Seek(rng SeekRange, f func(k, v []byte) bool) {
	s.mut.RLock()
	merged := make(map[string][]byte)
	var deleted = make(map[string]bool)
	prefix := append(append([]byte{}, rng.Prefix...), rng.Start...)
	for k, st := range s.overlay {
		if !bytes.HasPrefix([]byte(k), rng.Prefix) || bytes.Compare([]byte(k), prefix) < 0 {
			continue
		}
		if st.deleted {
			deleted[k] = true
			continue
		}
		merged[k] = st.value
	}
	s.mut.RUnlock()

	s.ps.Seek(rng, func(k, v []byte) bool {
		ks := string(k)
		if _, ok := merged[ks]; ok {
			return true
		}
		if deleted[ks] {
			return true
		}
		merged[ks] = v
		return true
	})

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if rng.Backwards {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	for _, k := range keys {
		if !f([]byte(k), merged[k]) {
			return
		}
	}
}

// GetBatch returns the pending overlay contents without committing,
// mirroring the teacher's introspection hook for tests and diagnostics.
func (s *MemCachedStore) GetBatch() *MemBatch {
	s.mut.RLock()
	defer s.mut.RUnlock()
	b := &MemBatch{}
	keys := make([]string, 0, len(s.overlay))
	for k := range s.overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		st := s.overlay[k]
		kv := KeyValueExists{KeyValue: KeyValue{Key: []byte(k), Value: st.value}, Exists: st.existed}
		if st.deleted {
			b.Deleted = append(b.Deleted, kv)
		} else {
			b.Put = append(b.Put, kv)
		}
	}
	return b
}

// Persist flushes the overlay to the backing store as a single atomic
// batch (spec.md §4.3: "commit() is all-or-nothing") and clears the
// overlay, returning the number of keys written.
func (s *MemCachedStore) Persist() (int, error) {
	s.mut.Lock()
	overlay := s.overlay
	s.overlay = make(map[string]keyState)
	s.mut.Unlock()

	if len(overlay) == 0 {
		return 0, nil
	}

	puts := make(map[string][]byte)
	dels := make(map[string][]byte)
	for k, st := range overlay {
		if st.deleted {
			dels[k] = nil
		} else {
			puts[k] = st.value
		}
	}

	if s.private != nil {
		if err := s.private.PutChangeSet(puts, dels); err != nil {
			return 0, err
		}
		return len(overlay), nil
	}

	// Fall back to per-key application against a ReadOnlyStore that also
	// happens to support Put/Delete through a narrower interface (e.g. a
	// nested *MemCachedStore acting as an intermediate snapshot layer).
	type putter interface {
		Put([]byte, []byte) error
		Delete([]byte) error
	}
	if p, ok := s.ps.(putter); ok {
		for k, v := range puts {
			if err := p.Put([]byte(k), v); err != nil {
				return 0, err
			}
		}
		for k := range dels {
			if err := p.Delete([]byte(k)); err != nil {
				return 0, err
			}
		}
	}
	return len(overlay), nil
}

// Commit is an alias of Persist matching spec.md's Snapshot.commit() name.
func (s *MemCachedStore) Commit() (int, error) {
	return s.Persist()
}

// PutChangeSet stages puts and stores (deletes, by convention a nil value)
// directly into the overlay, letting an outer MemCachedStore's Persist
// apply a batch into this one without going through individual Put/Delete
// calls. Implements the Store interface, letting a MemCachedStore serve as
// another MemCachedStore's backing layer.
func (s *MemCachedStore) PutChangeSet(puts map[string][]byte, stores map[string][]byte) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	for k, v := range puts {
		_, existed := s.ps.Get([]byte(k))
		s.overlay[k] = keyState{value: v, existed: existed == nil}
	}
	for k := range stores {
		_, existed := s.ps.Get([]byte(k))
		s.overlay[k] = keyState{deleted: true, existed: existed == nil}
	}
	return nil
}

// Close is a no-op: a MemCachedStore doesn't own the backing store it
// layers over, so it has nothing of its own to release.
func (s *MemCachedStore) Close() error {
	return nil
}

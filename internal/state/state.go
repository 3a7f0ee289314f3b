// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state implements the per-run shared state store that workers
// publish their findings into. Keys are write-once: each worker is bound to
// exactly one key, so concurrent writers never contend for the same entry,
// and the store rejects a second write outright rather than overwrite.
// Implements: prd009-shared-state (R1-R3);
//
//	docs/ARCHITECTURE § Shared State.
package state

import (
	"fmt"
	"sort"
	"sync"
)

// DuplicateKeyError reports a second write to an already-written key. It
// indicates a worker-spec configuration bug, not a transient condition.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("state key %q already written", e.Key)
}

// Store is a per-run keyed container. A key is written at most once and is
// immutable afterwards; it may be read any number of times. The zero value
// is not usable; call New.
type Store struct {
	mu      sync.RWMutex
	entries map[string]any
}

// New returns an empty store for one pipeline run.
func New() *Store {
	return &Store{entries: make(map[string]any)}
}

// Put writes payload under key. The first write wins; any later write fails
// with *DuplicateKeyError and leaves the stored payload untouched.
func (s *Store) Put(key string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		return &DuplicateKeyError{Key: key}
	}
	s.entries[key] = payload
	return nil
}

// Get returns the payload stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.entries[key]
	return payload, ok
}

// Has reports whether key has been written.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns the written keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of written keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy of the store's contents. Payloads themselves are
// not deep-copied; they are immutable by convention once published.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]any, len(s.entries))
	for k, v := range s.entries {
		snap[k] = v
	}
	return snap
}

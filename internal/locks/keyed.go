// Package locks provides a keyed mutex used to serialize ledger writes per
// (user, budget period). The ledger's check-then-update sequence must not
// interleave for the same period or two concurrent postings could both pass
// the ceiling check against a stale spent total.
package locks

import (
	"sort"
	"sync"
)

// KeyedMutex provides mutual exclusion per string key. Locks for distinct
// keys do not contend. Entries are never evicted; the key space here is
// bounded by (user, month) pairs, which stays small.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for key.
func (k *KeyedMutex) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the mutex for key.
func (k *KeyedMutex) Unlock(key string) {
	k.get(key).Unlock()
}

// LockAll acquires the mutexes for every distinct key in sorted order, so
// two operations spanning the same pair of keys cannot deadlock. It returns
// the function that releases them.
func (k *KeyedMutex) LockAll(keys ...string) (unlock func()) {
	distinct := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if !seen[key] {
			seen[key] = true
			distinct = append(distinct, key)
		}
	}
	sort.Strings(distinct)

	for _, key := range distinct {
		k.Lock(key)
	}
	return func() {
		for i := len(distinct) - 1; i >= 0; i-- {
			k.Unlock(distinct[i])
		}
	}
}

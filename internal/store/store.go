// Package store provides injected in-memory keyed collections for projects,
// rank records, and backlinks. There is no ambient global state: the owning
// layer constructs the stores and hands them to whatever needs them.
//
// Operations are atomic with respect to each other, but there is no
// cross-request transaction boundary: two concurrent writes to the same key
// interleave and the last writer wins.
package store

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a key has no entry.
var ErrNotFound = errors.New("store: not found")

// Keyed is a mutex-guarded keyed collection preserving insertion order.
// Identifiers are generated on Create and are unique within the collection.
type Keyed[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

// NewKeyed returns an empty collection.
func NewKeyed[T any]() *Keyed[T] {
	return &Keyed[T]{items: make(map[string]T)}
}

// Create generates a fresh UUID, passes it to build so the value can carry
// its own identifier, and stores the result. The built value is returned.
func (k *Keyed[T]) Create(build func(id string) T) T {
	id := uuid.New().String()
	v := build(id)

	k.mu.Lock()
	defer k.mu.Unlock()
	k.items[id] = v
	k.order = append(k.order, id)
	return v
}

// Put replaces the value at id, which must already exist.
func (k *Keyed[T]) Put(id string, v T) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.items[id]; !ok {
		return ErrNotFound
	}
	k.items[id] = v
	return nil
}

// Get returns the value stored under id.
func (k *Keyed[T]) Get(id string) (T, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return v, nil
}

// List returns all values in insertion order.
func (k *Keyed[T]) List() []T {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]T, 0, len(k.order))
	for _, id := range k.order {
		out = append(out, k.items[id])
	}
	return out
}

// Delete removes the entry at id.
func (k *Keyed[T]) Delete(id string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.items[id]; !ok {
		return ErrNotFound
	}
	delete(k.items, id)
	for i, existing := range k.order {
		if existing == id {
			k.order = append(k.order[:i], k.order[i+1:]...)
			break
		}
	}
	return nil
}

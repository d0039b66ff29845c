// Package table provides the fixed-capacity concurrent key->row store
// that every stateful component is built on. Rows are value types;
// Update gives callers an atomic read-modify-write per row, which is
// how counters and check-then-act sequences stay race-free without
// external locks.
package table

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when a key doesn't exist in the table.
var ErrNotFound = errors.New("key not found")

// ErrCapacity is returned when inserting a new key into a full table.
var ErrCapacity = errors.New("table is full")

// Table is a thread-safe map of string keys to rows of type T with a
// fixed maximum row count. Inserting past capacity fails; existing keys
// can always be replaced.
type Table[T any] struct {
	mu       sync.RWMutex
	capacity int
	rows     map[string]T
}

// New creates a table holding at most capacity rows.
func New[T any](capacity int) *Table[T] {
	return &Table[T]{
		capacity: capacity,
		rows:     make(map[string]T),
	}
}

// Get retrieves a copy of the row for key.
func (t *Table[T]) Get(key string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[key]
	return row, ok
}

// Set inserts or replaces the row for key. Inserting a new key into a
// full table returns ErrCapacity and leaves the table unchanged.
func (t *Table[T]) Set(key string, row T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[key]; !ok && len(t.rows) >= t.capacity {
		return ErrCapacity
	}
	t.rows[key] = row
	return nil
}

// Update applies fn to the row for key as a single atomic operation and
// returns the updated row. If fn returns an error the row is left
// unchanged. Returns ErrNotFound for a missing key.
func (t *Table[T]) Update(key string, fn func(row *T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[key]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	if err := fn(&row); err != nil {
		var zero T
		return zero, err
	}
	t.rows[key] = row
	return row, nil
}

// Upsert applies fn to the existing row, or to a zero row when the key
// is absent, as a single atomic operation. Creating a new row in a full
// table returns ErrCapacity before fn runs.
func (t *Table[T]) Upsert(key string, fn func(row *T, exists bool) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[key]
	if !ok && len(t.rows) >= t.capacity {
		var zero T
		return zero, ErrCapacity
	}
	if err := fn(&row, ok); err != nil {
		var zero T
		return zero, err
	}
	t.rows[key] = row
	return row, nil
}

// Delete removes the row for key. Deleting a missing key is a no-op.
func (t *Table[T]) Delete(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, key)
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// ForEach calls fn for every row. Iteration stops when fn returns
// false. Order is not guaranteed. The table lock is held for the whole
// iteration, so fn must not call back into the table.
func (t *Table[T]) ForEach(fn func(key string, row T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for key, row := range t.rows {
		if !fn(key, row) {
			return
		}
	}
}

// Keys returns every key in the table. Order is not guaranteed.
func (t *Table[T]) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.rows))
	for key := range t.rows {
		keys = append(keys, key)
	}
	return keys
}

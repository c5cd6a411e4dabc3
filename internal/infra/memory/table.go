package memory

import (
	"context"
	"sync"
)

// Table is an in-memory implementation of app.Table that remembers
// insertion order.
type Table[T any] struct {
	notFound error

	mu    sync.RWMutex
	rows  map[string]T
	order []string
}

// NewTable returns an empty table that reports notFound for missing IDs.
func NewTable[T any](notFound error) *Table[T] {
	return &Table[T]{
		notFound: notFound,
		rows:     make(map[string]T),
	}
}

func (t *Table[T]) Get(_ context.Context, id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, t.notFound
	}
	return v, nil
}

func (t *Table[T]) List(_ context.Context) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out, nil
}

// Put inserts or replaces v. Replacing keeps the original position.
func (t *Table[T]) Put(_ context.Context, id string, v T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
	return nil
}

func (t *Table[T]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return t.notFound
	}
	delete(t.rows, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

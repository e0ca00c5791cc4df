// Package memstore provides an in-memory table with the filter, sort and
// page-slicing behavior of the furniture backend. It backs the mock gateways
// and the development server.
package memstore

import (
	"errors"
	"slices"
	"sort"
	"sync"
)

// ErrNotFound is returned for unknown ids
var ErrNotFound = errors.New("resource not found")

// Table holds rows of T keyed by an int64 id.
type Table[T any] struct {
	mu     sync.RWMutex
	rows   []T
	idOf   func(T) int64
	nextID int64
}

// New creates a table seeded with rows. idOf extracts the id of a row.
func New[T any](idOf func(T) int64, seed ...T) *Table[T] {
	t := &Table[T]{idOf: idOf, rows: slices.Clone(seed)}
	for _, r := range seed {
		if id := idOf(r); id > t.nextID {
			t.nextID = id
		}
	}
	return t
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Query selects, orders and slices rows.
type Query[T any] struct {
	Match func(T) bool
	Less  func(a, b T) bool
	Page  int
	Limit int
}

// List returns one page of matching rows and the total match count.
func (t *Table[T]) List(q Query[T]) ([]T, int) {
	t.mu.RLock()
	matched := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		if q.Match == nil || q.Match(r) {
			matched = append(matched, r)
		}
	}
	t.mu.RUnlock()

	if q.Less != nil {
		sort.SliceStable(matched, func(i, j int) bool { return q.Less(matched[i], matched[j]) })
	}
	return Slice(matched, q.Page, q.Limit), len(matched)
}

// Slice returns page (1-based) of size limit. Out-of-range pages are empty.
func Slice[T any](rows []T, page, limit int) []T {
	if limit <= 0 {
		return rows
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(rows) {
		return []T{}
	}
	end := min(start+limit, len(rows))
	return rows[start:end]
}

// Get returns the row with id.
func (t *Table[T]) Get(id int64) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.rows {
		if t.idOf(r) == id {
			return r, nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// All returns a copy of every row.
func (t *Table[T]) All() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.rows)
}

// Insert builds a row with the next id and prepends it, so fresh rows show
// first in insertion order.
func (t *Table[T]) Insert(build func(id int64) T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	row := build(t.nextID)
	t.rows = append([]T{row}, t.rows...)
	return row
}

// Update replaces the row with id by fn(row).
func (t *Table[T]) Update(id int64, fn func(T) T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, r := range t.rows {
		if t.idOf(r) == id {
			t.rows[i] = fn(r)
			return t.rows[i], nil
		}
	}
	var zero T
	return zero, ErrNotFound
}

// Delete removes the row with id.
func (t *Table[T]) Delete(id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, r := range t.rows {
		if t.idOf(r) == id {
			t.rows = slices.Delete(t.rows, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

// Package memory implements the repositories in process. It evaluates the
// same filter specs as postgres and enforces the same unique keys, and is
// used by service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/repository"
)

type table[T any] struct {
	mu     *sync.RWMutex
	rows   map[int64]*T
	nextID int64
	calls  map[string]int

	id     func(*T) *int64
	field  func(*T, string) any
	unique []func(*T) string
}

func newTable[T any](mu *sync.RWMutex, id func(*T) *int64, field func(*T, string) any, unique ...func(*T) string) *table[T] {
	return &table[T]{
		mu:     mu,
		rows:   make(map[int64]*T),
		calls:  make(map[string]int),
		id:     id,
		field:  field,
		unique: unique,
	}
}

// Calls returns how many times method was invoked.
func (t *table[T]) Calls(method string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.calls[method]
}

func (t *table[T]) Create(_ context.Context, entity *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls["Create"]++

	if t.conflicts(entity, 0) {
		return repository.ErrDuplicate
	}
	t.nextID++
	*t.id(entity) = t.nextID
	row := *entity
	t.rows[t.nextID] = &row
	return nil
}

func (t *table[T]) Get(_ context.Context, id int64) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls["Get"]++

	row, ok := t.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *row
	return &out, nil
}

func (t *table[T]) FindOne(_ context.Context, spec filter.Spec) (*T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls["FindOne"]++

	matches := t.match(spec)
	if len(matches) == 0 {
		return nil, repository.ErrNotFound
	}
	out := *matches[0]
	return &out, nil
}

func (t *table[T]) Count(_ context.Context, spec filter.Spec) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls["Count"]++

	return int64(len(t.match(spec))), nil
}

func (t *table[T]) Search(_ context.Context, q filter.Query) ([]*T, int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls["Search"]++

	matches := t.match(q.Spec)
	sort.SliceStable(matches, func(i, j int) bool {
		return q.Compare(t.accessor(matches[i]), t.accessor(matches[j])) < 0
	})

	total := int64(len(matches))
	start := q.Offset()
	if start > len(matches) {
		start = len(matches)
	}
	end := start + q.Limit()
	if end > len(matches) {
		end = len(matches)
	}

	page := make([]*T, 0, end-start)
	for _, row := range matches[start:end] {
		out := *row
		page = append(page, &out)
	}
	return page, total, nil
}

func (t *table[T]) Update(_ context.Context, entity *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls["Update"]++

	id := *t.id(entity)
	if _, ok := t.rows[id]; !ok {
		return repository.ErrNotFound
	}
	if t.conflicts(entity, id) {
		return repository.ErrDuplicate
	}
	row := *entity
	t.rows[id] = &row
	return nil
}

func (t *table[T]) Delete(_ context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls["Delete"]++

	if _, ok := t.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

// match returns matching rows in id order. Callers hold the lock.
func (t *table[T]) match(spec filter.Spec) []*T {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		row := t.rows[id]
		if spec.Match(t.accessor(row)) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) accessor(row *T) func(string) any {
	return func(column string) any { return t.field(row, column) }
}

func (t *table[T]) conflicts(entity *T, self int64) bool {
	for _, key := range t.unique {
		k := key(entity)
		for id, row := range t.rows {
			if id != self && key(row) == k {
				return true
			}
		}
	}
	return false
}

func (t *table[T]) snapshot() (map[int64]*T, int64) {
	rows := make(map[int64]*T, len(t.rows))
	for id, row := range t.rows {
		rows[id] = row
	}
	return rows, t.nextID
}

func (t *table[T]) restore(rows map[int64]*T, nextID int64) {
	t.rows = rows
	t.nextID = nextID
}

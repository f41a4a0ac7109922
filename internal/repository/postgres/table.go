package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/repository"
)

// table implements the read and delete half of EntityRepository for one
// table. Entity repositories embed it and add Create and Update.
type table[T any] struct {
	BaseRepository
	name string
}

func (t *table[T]) Get(ctx context.Context, id int64) (_ *T, err error) {
	defer t.observe(t.name+".get", time.Now(), &err)

	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, t.name)

	var entity T
	if err := sqlx.GetContext(ctx, t.conn(ctx), &entity, query, id); err != nil {
		return nil, mapError(err)
	}
	return &entity, nil
}

func (t *table[T]) FindOne(ctx context.Context, spec filter.Spec) (_ *T, err error) {
	defer t.observe(t.name+".find_one", time.Now(), &err)

	where, args := spec.Where(1)
	query := fmt.Sprintf(`SELECT * FROM %s%s ORDER BY id LIMIT 1`, t.name, where)

	var entity T
	if err := sqlx.GetContext(ctx, t.conn(ctx), &entity, query, args...); err != nil {
		return nil, mapError(err)
	}
	return &entity, nil
}

func (t *table[T]) Count(ctx context.Context, spec filter.Spec) (_ int64, err error) {
	defer t.observe(t.name+".count", time.Now(), &err)

	where, args := spec.Where(1)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, t.name, where)

	var total int64
	if err := sqlx.GetContext(ctx, t.conn(ctx), &total, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.name, err)
	}
	return total, nil
}

func (t *table[T]) Search(ctx context.Context, q filter.Query) (_ []*T, _ int64, err error) {
	defer t.observe(t.name+".search", time.Now(), &err)

	total, err := t.Count(ctx, q.Spec)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*T{}, 0, nil
	}

	where, args := q.Spec.Where(1)
	query := fmt.Sprintf(`SELECT * FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		t.name, where, q.OrderBy(), len(args)+1, len(args)+2)
	args = append(args, q.Limit(), q.Offset())

	var rows []*T
	if err := sqlx.SelectContext(ctx, t.conn(ctx), &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search %s: %w", t.name, err)
	}
	return rows, total, nil
}

func (t *table[T]) Delete(ctx context.Context, id int64) (err error) {
	defer t.observe(t.name+".delete", time.Now(), &err)

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.name)

	result, err := t.conn(ctx).ExecContext(ctx, query, id)
	if err != nil {
		return mapDeleteError(err)
	}
	return expectOne(result)
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func expectOne(result rowsAffected) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

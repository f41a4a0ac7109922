package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/chronosync/internal/repository"
	"github.com/jwalitptl/chronosync/pkg/metrics"
)

type txKey struct{}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// NewBaseRepository creates a new base repository. m may be nil.
func NewBaseRepository(db *sqlx.DB, m *metrics.Metrics) BaseRepository {
	return BaseRepository{db: db, metrics: m}
}

// conn returns the transaction carried by ctx, or the pool.
func (r *BaseRepository) conn(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// WithinTx runs fn in a transaction carried by the context. Nested calls
// join the outer transaction.
func (r *BaseRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// observe records one database operation. Call it deferred with a pointer
// to the named error result.
func (r *BaseRepository) observe(operation string, start time.Time, err *error) {
	if r.metrics == nil {
		return
	}
	status := "success"
	if err != nil && *err != nil {
		status = "error"
	}
	r.metrics.DatabaseOperations.WithLabelValues(operation, status).Inc()
	r.metrics.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

type txManager struct {
	BaseRepository
}

func NewTxManager(base BaseRepository) repository.TxManager {
	return &txManager{base}
}

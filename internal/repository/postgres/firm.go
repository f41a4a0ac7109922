package postgres

import (
	"context"
	"time"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/repository"
)

type firmRepository struct {
	table[model.Firm]
}

func NewFirmRepository(base BaseRepository) repository.FirmRepository {
	return &firmRepository{table[model.Firm]{BaseRepository: base, name: "firms"}}
}

func (r *firmRepository) Create(ctx context.Context, firm *model.Firm) (err error) {
	defer r.observe("firms.create", time.Now(), &err)

	query := `
		INSERT INTO firms (name, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err = r.conn(ctx).QueryRowxContext(ctx, query,
		firm.Name,
		firm.CreatedAt,
		firm.UpdatedAt,
		firm.CreatedBy,
		firm.UpdatedBy,
	).Scan(&firm.ID)
	return mapError(err)
}

func (r *firmRepository) Update(ctx context.Context, firm *model.Firm) (err error) {
	defer r.observe("firms.update", time.Now(), &err)

	query := `
		UPDATE firms SET
			name = $1,
			updated_at = $2,
			updated_by = $3
		WHERE id = $4
	`
	result, err := r.conn(ctx).ExecContext(ctx, query, firm.Name, firm.UpdatedAt, firm.UpdatedBy, firm.ID)
	if err != nil {
		return mapError(err)
	}
	return expectOne(result)
}

package postgres

import (
	"context"
	"time"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/repository"
)

type appointmentTypeRepository struct {
	table[model.AppointmentType]
}

func NewAppointmentTypeRepository(base BaseRepository) repository.AppointmentTypeRepository {
	return &appointmentTypeRepository{table[model.AppointmentType]{BaseRepository: base, name: "appointment_types"}}
}

func (r *appointmentTypeRepository) Create(ctx context.Context, at *model.AppointmentType) (err error) {
	defer r.observe("appointment_types.create", time.Now(), &err)

	query := `
		INSERT INTO appointment_types (
			name, duration_minutes, price, currency, color_code, firm_id,
			created_at, updated_at, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = r.conn(ctx).QueryRowxContext(ctx, query,
		at.Name,
		at.DurationMinutes,
		at.Price,
		at.Currency,
		at.ColorCode,
		at.FirmID,
		at.CreatedAt,
		at.UpdatedAt,
		at.CreatedBy,
		at.UpdatedBy,
	).Scan(&at.ID)
	return mapError(err)
}

func (r *appointmentTypeRepository) Update(ctx context.Context, at *model.AppointmentType) (err error) {
	defer r.observe("appointment_types.update", time.Now(), &err)

	query := `
		UPDATE appointment_types SET
			name = $1,
			duration_minutes = $2,
			price = $3,
			currency = $4,
			color_code = $5,
			updated_at = $6,
			updated_by = $7
		WHERE id = $8
	`
	result, err := r.conn(ctx).ExecContext(ctx, query,
		at.Name,
		at.DurationMinutes,
		at.Price,
		at.Currency,
		at.ColorCode,
		at.UpdatedAt,
		at.UpdatedBy,
		at.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return expectOne(result)
}

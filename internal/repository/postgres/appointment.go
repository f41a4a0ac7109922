package postgres

import (
	"context"
	"time"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/repository"
)

type appointmentRepository struct {
	table[model.Appointment]
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{table[model.Appointment]{BaseRepository: base, name: "appointments"}}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) (err error) {
	defer r.observe("appointments.create", time.Now(), &err)

	query := `
		INSERT INTO appointments (
			note, start_time, end_time, client_id, appointment_type_id,
			employee_id, firm_id, created_at, updated_at, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = r.conn(ctx).QueryRowxContext(ctx, query,
		appointment.Note,
		appointment.StartTime,
		appointment.EndTime,
		appointment.ClientID,
		appointment.AppointmentTypeID,
		appointment.EmployeeID,
		appointment.FirmID,
		appointment.CreatedAt,
		appointment.UpdatedAt,
		appointment.CreatedBy,
		appointment.UpdatedBy,
	).Scan(&appointment.ID)
	return mapError(err)
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) (err error) {
	defer r.observe("appointments.update", time.Now(), &err)

	query := `
		UPDATE appointments SET
			note = $1,
			start_time = $2,
			end_time = $3,
			client_id = $4,
			appointment_type_id = $5,
			employee_id = $6,
			updated_at = $7,
			updated_by = $8
		WHERE id = $9
	`
	result, err := r.conn(ctx).ExecContext(ctx, query,
		appointment.Note,
		appointment.StartTime,
		appointment.EndTime,
		appointment.ClientID,
		appointment.AppointmentTypeID,
		appointment.EmployeeID,
		appointment.UpdatedAt,
		appointment.UpdatedBy,
		appointment.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return expectOne(result)
}

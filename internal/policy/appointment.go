package policy

import (
	"context"
	"errors"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/repository"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

const appointmentNotFound = "Appointment does not exist."

// AppointmentCreate defaults the assigned employee to the caller.
// Employees cannot assign anyone else.
func AppointmentCreate() Policy {
	return Func[*model.AppointmentRequest](func(_ context.Context, actor principal.Principal, req *model.AppointmentRequest) error {
		if req == nil || req.StartTime == nil || req.ClientID == nil || req.AppointmentTypeID == nil {
			return malformed()
		}
		if err := anyRole(actor); err != nil {
			return err
		}

		if req.EmployeeID == nil {
			self := actor.UserID
			req.EmployeeID = &self
		}
		if actor.Role == model.RoleEmployee && *req.EmployeeID != actor.UserID {
			return apperrors.Forbidden(ReasonOwnSchedule)
		}
		return nil
	})
}

// AppointmentRead limits employees to appointments assigned to them.
func AppointmentRead() Policy {
	return Func[*model.AppointmentSearchRequest](func(_ context.Context, actor principal.Principal, req *model.AppointmentSearchRequest) error {
		switch actor.Role {
		case model.RoleAdministrator, model.RoleManager:
			return nil
		case model.RoleEmployee:
			if req == nil {
				return malformed()
			}
			req.EmployeeID = filter.Some(actor.UserID)
			return nil
		default:
			return unsupportedRole(actor)
		}
	})
}

func AppointmentUpdate(appointments repository.AppointmentRepository) Policy {
	return Func[*model.AppointmentRequest](func(ctx context.Context, actor principal.Principal, req *model.AppointmentRequest) error {
		if req == nil {
			return malformed()
		}
		if err := ownAppointment(ctx, appointments, actor, req.ID); err != nil {
			return err
		}
		if actor.Role == model.RoleEmployee && req.EmployeeID != nil && *req.EmployeeID != actor.UserID {
			return apperrors.Forbidden(ReasonOwnSchedule)
		}
		return nil
	})
}

func AppointmentDelete(appointments repository.AppointmentRepository) Policy {
	return Func[int64](func(ctx context.Context, actor principal.Principal, id int64) error {
		return ownAppointment(ctx, appointments, actor, id)
	})
}

// ownAppointment lets managers through and checks that an employee is
// assigned to the target.
func ownAppointment(ctx context.Context, appointments repository.AppointmentRepository, actor principal.Principal, id int64) error {
	switch actor.Role {
	case model.RoleAdministrator, model.RoleManager:
		return nil
	case model.RoleEmployee:
	default:
		return unsupportedRole(actor)
	}

	target, err := appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("Appointment", nil).WithMessage(appointmentNotFound)
		}
		return apperrors.Internal(err)
	}
	if target.FirmID != actor.FirmID {
		return apperrors.NewNotFound("Appointment", nil).WithMessage(appointmentNotFound)
	}
	if target.EmployeeID != actor.UserID {
		return apperrors.Forbidden(ReasonOwnAppointments)
	}
	return nil
}

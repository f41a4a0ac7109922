package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/query"
	"github.com/jwalitptl/chronosync/internal/repository"
	"github.com/jwalitptl/chronosync/internal/service"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

const ReasonNotFound = "Appointment does not exist."

var ErrEndBeforeStart = apperrors.BadRequest("end_time must not be before start_time", nil)

type AppointmentServicer interface {
	Create(ctx context.Context, actor principal.Principal, req *model.AppointmentRequest) (*model.Appointment, error)
	Search(ctx context.Context, actor principal.Principal, req *model.AppointmentSearchRequest) (filter.Page[*model.Appointment], error)
	Update(ctx context.Context, actor principal.Principal, req *model.AppointmentRequest) (*model.Appointment, error)
	Delete(ctx context.Context, actor principal.Principal, id int64) error
}

type Service struct {
	repo    repository.AppointmentRepository
	clients repository.ClientRepository
	types   repository.AppointmentTypeRepository
	users   repository.UserRepository
	tx      repository.TxManager
	now     func() time.Time
}

var _ AppointmentServicer = (*Service)(nil)

func NewService(
	repo repository.AppointmentRepository,
	clients repository.ClientRepository,
	types repository.AppointmentTypeRepository,
	users repository.UserRepository,
	tx repository.TxManager,
) *Service {
	return &Service{
		repo:    repo,
		clients: clients,
		types:   types,
		users:   users,
		tx:      tx,
		now:     time.Now,
	}
}

// Create schedules an appointment. Client, type and employee must belong
// to the actor's firm. Without an end time the type's duration is used.
func (s *Service) Create(ctx context.Context, actor principal.Principal, req *model.AppointmentRequest) (*model.Appointment, error) {
	if req.StartTime == nil || req.ClientID == nil || req.AppointmentTypeID == nil || req.EmployeeID == nil {
		return nil, service.Incomplete()
	}

	appt := &model.Appointment{
		Note:      req.Note,
		StartTime: req.StartTime.UTC(),
		FirmID:    actor.FirmID,
	}
	appt.StampCreated(actor.UserID, s.now())

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.client(ctx, actor.FirmID, *req.ClientID); err != nil {
			return err
		}
		at, err := s.appointmentType(ctx, actor.FirmID, *req.AppointmentTypeID)
		if err != nil {
			return err
		}
		if _, err := s.employee(ctx, actor.FirmID, *req.EmployeeID); err != nil {
			return err
		}

		appt.ClientID = *req.ClientID
		appt.AppointmentTypeID = at.ID
		appt.EmployeeID = *req.EmployeeID
		appt.EndTime = endTime(appt.StartTime, req.EndTime, time.Duration(at.DurationMinutes)*time.Minute)
		if appt.EndTime.Before(appt.StartTime) {
			return ErrEndBeforeStart
		}

		if err := s.repo.Create(ctx, appt); err != nil {
			return service.Translate("Appointment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("appointment_id", appt.ID).
		Int64("employee_id", appt.EmployeeID).
		Int64("firm_id", appt.FirmID).
		Msg("appointment created")
	return appt, nil
}

func (s *Service) Search(ctx context.Context, actor principal.Principal, req *model.AppointmentSearchRequest) (filter.Page[*model.Appointment], error) {
	q, err := filter.Paginate(query.InFirm(query.Appointments(req), actor.FirmID), req.PageRequest, query.AppointmentSorting)
	if err != nil {
		return filter.Page[*model.Appointment]{}, err
	}

	appts, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return filter.Page[*model.Appointment]{}, fmt.Errorf("failed to search appointments: %w", err)
	}
	return filter.NewPage(appts, q, total), nil
}

// Update reschedules or reassigns an appointment. Moving the start without
// a new end keeps the current length.
func (s *Service) Update(ctx context.Context, actor principal.Principal, req *model.AppointmentRequest) (*model.Appointment, error) {
	var appt *model.Appointment
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		appt, err = s.load(ctx, actor, req.ID)
		if err != nil {
			return err
		}

		length := appt.EndTime.Sub(appt.StartTime)
		appt.Note = service.Merge(appt.Note, req.Note)

		if req.ClientID != nil {
			if _, err := s.client(ctx, actor.FirmID, *req.ClientID); err != nil {
				return err
			}
			appt.ClientID = *req.ClientID
		}
		if req.AppointmentTypeID != nil {
			at, err := s.appointmentType(ctx, actor.FirmID, *req.AppointmentTypeID)
			if err != nil {
				return err
			}
			appt.AppointmentTypeID = at.ID
		}
		if req.EmployeeID != nil {
			if _, err := s.employee(ctx, actor.FirmID, *req.EmployeeID); err != nil {
				return err
			}
			appt.EmployeeID = *req.EmployeeID
		}
		if req.StartTime != nil {
			appt.StartTime = req.StartTime.UTC()
			appt.EndTime = appt.StartTime.Add(length)
		}
		if req.EndTime != nil {
			appt.EndTime = req.EndTime.UTC()
		}
		if appt.EndTime.Before(appt.StartTime) {
			return ErrEndBeforeStart
		}

		appt.StampUpdated(actor.UserID, s.now())
		if err := s.repo.Update(ctx, appt); err != nil {
			return s.translate(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Delete checks that the appointment exists in the actor's firm before
// removing it.
func (s *Service) Delete(ctx context.Context, actor principal.Principal, id int64) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err)
	}

	log.Info().Int64("appointment_id", id).Int64("deleted_by", actor.UserID).Msg("appointment deleted")
	return nil
}

func (s *Service) load(ctx context.Context, actor principal.Principal, id int64) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.translate(err)
	}
	if appt.FirmID != actor.FirmID {
		return nil, notFound()
	}
	return appt, nil
}

func (s *Service) client(ctx context.Context, firmID, id int64) (*model.Client, error) {
	c, err := s.clients.Get(ctx, id)
	if err != nil {
		return nil, service.Translate("Client", err)
	}
	if c.FirmID != firmID {
		return nil, apperrors.NotFound("Client", nil)
	}
	return c, nil
}

func (s *Service) appointmentType(ctx context.Context, firmID, id int64) (*model.AppointmentType, error) {
	at, err := s.types.Get(ctx, id)
	if err != nil {
		return nil, service.Translate("Appointment type", err)
	}
	if at.FirmID != firmID {
		return nil, apperrors.NotFound("Appointment type", nil)
	}
	return at, nil
}

func (s *Service) employee(ctx context.Context, firmID, id int64) (*model.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, service.Translate("Employee", err)
	}
	if u.FirmID != firmID {
		return nil, apperrors.NotFound("Employee", nil)
	}
	return u, nil
}

func (s *Service) translate(err error) error {
	err = service.Translate("Appointment", err)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return notFound()
	}
	return err
}

func notFound() error {
	return apperrors.NewNotFound("Appointment", nil).WithMessage(ReasonNotFound)
}

func endTime(start time.Time, end *time.Time, duration time.Duration) time.Time {
	if end != nil {
		return end.UTC()
	}
	return start.Add(duration)
}

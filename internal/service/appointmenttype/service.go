package appointmenttype

import (
	"context"
	"fmt"
	"strings"
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

const resource = "Appointment type"

type AppointmentTypeServicer interface {
	Create(ctx context.Context, actor principal.Principal, req *model.AppointmentTypeRequest) (*model.AppointmentType, error)
	Search(ctx context.Context, actor principal.Principal, req *model.AppointmentTypeSearchRequest) (filter.Page[*model.AppointmentType], error)
	Update(ctx context.Context, actor principal.Principal, req *model.AppointmentTypeRequest) (*model.AppointmentType, error)
	Delete(ctx context.Context, actor principal.Principal, id int64) error
}

type Service struct {
	repo repository.AppointmentTypeRepository
	now  func() time.Time
}

var _ AppointmentTypeServicer = (*Service)(nil)

func NewService(repo repository.AppointmentTypeRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, actor principal.Principal, req *model.AppointmentTypeRequest) (*model.AppointmentType, error) {
	at := &model.AppointmentType{
		Name:            strings.TrimSpace(req.Name),
		DurationMinutes: *req.DurationMinutes,
		Currency:        req.Currency,
		ColorCode:       req.ColorCode,
		FirmID:          actor.FirmID,
	}
	if req.Price != nil {
		at.Price = *req.Price
	}
	at.StampCreated(actor.UserID, s.now())

	if err := s.repo.Create(ctx, at); err != nil {
		return nil, service.Translate(resource, err)
	}

	log.Info().Int64("appointment_type_id", at.ID).Int64("firm_id", at.FirmID).Msg("appointment type created")
	return at, nil
}

func (s *Service) Search(ctx context.Context, actor principal.Principal, req *model.AppointmentTypeSearchRequest) (filter.Page[*model.AppointmentType], error) {
	q, err := filter.Paginate(query.InFirm(query.AppointmentTypes(req), actor.FirmID), req.PageRequest, query.AppointmentTypeSorting)
	if err != nil {
		return filter.Page[*model.AppointmentType]{}, err
	}

	types, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return filter.Page[*model.AppointmentType]{}, fmt.Errorf("failed to search appointment types: %w", err)
	}
	return filter.NewPage(types, q, total), nil
}

func (s *Service) Update(ctx context.Context, actor principal.Principal, req *model.AppointmentTypeRequest) (*model.AppointmentType, error) {
	at, err := s.load(ctx, actor, req.ID)
	if err != nil {
		return nil, err
	}

	at.Name = service.Merge(at.Name, strings.TrimSpace(req.Name))
	at.ColorCode = service.Merge(at.ColorCode, req.ColorCode)
	if req.DurationMinutes != nil {
		at.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		at.Price = *req.Price
	}
	if req.Currency != "" {
		at.Currency = req.Currency
	}
	at.StampUpdated(actor.UserID, s.now())

	if err := s.repo.Update(ctx, at); err != nil {
		return nil, service.Translate(resource, err)
	}
	return at, nil
}

// Delete fails with a conflict while appointments still use the type.
func (s *Service) Delete(ctx context.Context, actor principal.Principal, id int64) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.Translate(resource, err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, actor principal.Principal, id int64) (*model.AppointmentType, error) {
	at, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.Translate(resource, err)
	}
	if at.FirmID != actor.FirmID {
		return nil, apperrors.NotFound(resource, nil)
	}
	return at, nil
}

package client

import (
	"context"
	"errors"
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

const ReasonDuplicate = "Client with the same name, email and phone already exists."

type ClientServicer interface {
	Create(ctx context.Context, actor principal.Principal, req *model.ClientRequest) (*model.Client, error)
	Search(ctx context.Context, actor principal.Principal, req *model.ClientSearchRequest) (filter.Page[*model.Client], error)
	Update(ctx context.Context, actor principal.Principal, req *model.ClientRequest) (*model.Client, error)
	Delete(ctx context.Context, actor principal.Principal, id int64) error
}

type Service struct {
	repo repository.ClientRepository
	now  func() time.Time
}

var _ ClientServicer = (*Service)(nil)

func NewService(repo repository.ClientRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create stores a client in the actor's firm. A client with the same
// name, email and phone in that firm is a conflict.
func (s *Service) Create(ctx context.Context, actor principal.Principal, req *model.ClientRequest) (*model.Client, error) {
	client := &model.Client{
		Person: model.Person{
			FirstName:        strings.TrimSpace(req.FirstName),
			LastName:         strings.TrimSpace(req.LastName),
			Address:          req.Address,
			Phone:            strings.TrimSpace(req.Phone),
			Email:            strings.TrimSpace(req.Email),
			UniqueIdentifier: req.UniqueIdentifier,
		},
		FirmID: actor.FirmID,
	}
	client.StampCreated(actor.UserID, s.now())

	if err := s.ensureUnique(ctx, client); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, conflictOr(err)
	}

	log.Info().Int64("client_id", client.ID).Int64("firm_id", client.FirmID).Msg("client created")
	return client, nil
}

func (s *Service) Search(ctx context.Context, actor principal.Principal, req *model.ClientSearchRequest) (filter.Page[*model.Client], error) {
	q, err := filter.Paginate(query.InFirm(query.Clients(req), actor.FirmID), req.PageRequest, query.ClientSorting)
	if err != nil {
		return filter.Page[*model.Client]{}, err
	}

	clients, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return filter.Page[*model.Client]{}, fmt.Errorf("failed to search clients: %w", err)
	}
	return filter.NewPage(clients, q, total), nil
}

func (s *Service) Update(ctx context.Context, actor principal.Principal, req *model.ClientRequest) (*model.Client, error) {
	client, err := s.load(ctx, actor, req.ID)
	if err != nil {
		return nil, err
	}

	client.FirstName = service.Merge(client.FirstName, strings.TrimSpace(req.FirstName))
	client.LastName = service.Merge(client.LastName, strings.TrimSpace(req.LastName))
	client.Address = service.Merge(client.Address, req.Address)
	client.Phone = service.Merge(client.Phone, strings.TrimSpace(req.Phone))
	client.Email = service.Merge(client.Email, strings.TrimSpace(req.Email))
	client.UniqueIdentifier = service.Merge(client.UniqueIdentifier, req.UniqueIdentifier)
	client.StampUpdated(actor.UserID, s.now())

	if err := s.ensureUnique(ctx, client); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, conflictOr(err)
	}
	return client, nil
}

// Delete fails with a conflict while appointments still reference the client.
func (s *Service) Delete(ctx context.Context, actor principal.Principal, id int64) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.Translate("Client", err)
	}
	return nil
}

// ensureUnique is advisory. The storage constraint has the final word.
func (s *Service) ensureUnique(ctx context.Context, client *model.Client) error {
	existing, err := s.repo.FindOne(ctx, query.ClientIdentity(client.FirmID, client.Person))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check client identity: %w", err)
	case existing.ID != client.ID:
		return apperrors.Conflict(ReasonDuplicate, nil)
	default:
		return nil
	}
}

func (s *Service) load(ctx context.Context, actor principal.Principal, id int64) (*model.Client, error) {
	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.Translate("Client", err)
	}
	if client.FirmID != actor.FirmID {
		return nil, apperrors.NotFound("Client", nil)
	}
	return client, nil
}

func conflictOr(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.Conflict(ReasonDuplicate, err)
	}
	return service.Translate("Client", err)
}

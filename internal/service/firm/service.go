package firm

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
	"github.com/jwalitptl/chronosync/pkg/security"
)

type FirmServicer interface {
	Create(ctx context.Context, actor principal.Principal, req *model.FirmRequest) (*model.Firm, error)
	Search(ctx context.Context, actor principal.Principal, req *model.FirmSearchRequest) (filter.Page[*model.Firm], error)
}

// Administrator describes the account created on an empty database.
type Administrator struct {
	FirmName string
	Username string
	Password string
}

type Service struct {
	repo   repository.FirmRepository
	users  repository.UserRepository
	tx     repository.TxManager
	hasher security.PasswordHasher
	now    func() time.Time
}

var _ FirmServicer = (*Service)(nil)

func NewService(repo repository.FirmRepository, users repository.UserRepository, tx repository.TxManager, hasher security.PasswordHasher) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		tx:     tx,
		hasher: hasher,
		now:    time.Now,
	}
}

func (s *Service) Create(ctx context.Context, actor principal.Principal, req *model.FirmRequest) (*model.Firm, error) {
	firm := &model.Firm{Name: strings.TrimSpace(req.Name)}
	firm.StampCreated(actor.UserID, s.now())

	if err := s.repo.Create(ctx, firm); err != nil {
		return nil, service.Translate("Firm", err)
	}

	log.Info().Int64("firm_id", firm.ID).Str("name", firm.Name).Msg("firm created")
	return firm, nil
}

func (s *Service) Search(ctx context.Context, _ principal.Principal, req *model.FirmSearchRequest) (filter.Page[*model.Firm], error) {
	q, err := filter.Paginate(query.Firms(req), req.PageRequest, query.FirmSorting)
	if err != nil {
		return filter.Page[*model.Firm]{}, err
	}

	firms, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return filter.Page[*model.Firm]{}, fmt.Errorf("failed to search firms: %w", err)
	}
	return filter.NewPage(firms, q, total), nil
}

// Bootstrap creates a firm and its administrator when no user exists yet.
// It reports whether anything was created.
func (s *Service) Bootstrap(ctx context.Context, admin Administrator) (bool, error) {
	if admin.Password == "" {
		return false, nil
	}

	existing, err := s.users.Count(ctx, filter.All())
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	hash, err := s.hasher.Hash(admin.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := s.now()
		firm := &model.Firm{Name: admin.FirmName}
		firm.CreatedAt, firm.UpdatedAt = now, now
		if err := s.repo.Create(ctx, firm); err != nil {
			return fmt.Errorf("failed to create firm: %w", err)
		}

		user := &model.User{
			Person:       model.Person{FirstName: "System", LastName: "Administrator"},
			Username:     strings.ToLower(admin.Username),
			PasswordHash: hash,
			Role:         model.RoleAdministrator,
			Enabled:      true,
			FirmID:       firm.ID,
		}
		user.CreatedAt, user.UpdatedAt = now, now
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create administrator: %w", err)
		}

		log.Info().Int64("firm_id", firm.ID).Str("username", user.Username).Msg("bootstrapped administrator")
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

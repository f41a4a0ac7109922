package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/query"
	"github.com/jwalitptl/chronosync/internal/repository"
	"github.com/jwalitptl/chronosync/internal/service"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
	"github.com/jwalitptl/chronosync/pkg/security"
)

const defaultUsernameAttempts = 5

type UserServicer interface {
	Create(ctx context.Context, actor principal.Principal, req *model.UserRequest) (*model.UserResponse, error)
	Search(ctx context.Context, actor principal.Principal, req *model.UserSearchRequest) (filter.Page[model.UserResponse], error)
	Update(ctx context.Context, actor principal.Principal, req *model.UserRequest) (*model.UserResponse, error)
	Delete(ctx context.Context, actor principal.Principal, id int64) error
}

// PrincipalCache drops cached principals after their user row changes.
type PrincipalCache interface {
	Invalidate(userID int64)
}

type Service struct {
	repo        repository.UserRepository
	tokens      repository.TokenStore
	hasher      security.PasswordHasher
	principals  PrincipalCache
	maxAttempts int
	now         func() time.Time
}

var _ UserServicer = (*Service)(nil)

func NewService(repo repository.UserRepository, tokens repository.TokenStore, hasher security.PasswordHasher, principals PrincipalCache, maxAttempts int) *Service {
	if maxAttempts <= 0 {
		maxAttempts = defaultUsernameAttempts
	}
	return &Service{
		repo:        repo,
		tokens:      tokens,
		hasher:      hasher,
		principals:  principals,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// Create stores a new user in the actor's firm. The username is derived
// from the name and made unique with a numeric suffix.
func (s *Service) Create(ctx context.Context, actor principal.Principal, req *model.UserRequest) (*model.UserResponse, error) {
	if req.Role == nil || req.Enabled == nil {
		return nil, service.Incomplete()
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Person:       person(req),
		PasswordHash: hash,
		Role:         *req.Role,
		Enabled:      *req.Enabled,
		FirmID:       actor.FirmID,
	}
	if req.Locked != nil {
		user.Locked = *req.Locked
	}
	user.StampCreated(actor.UserID, s.now())

	if err := s.insertWithUsername(ctx, user, BaseUsername(req.FirstName, req.LastName)); err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Int64("firm_id", user.FirmID).Msg("user created")
	resp := model.NewUserResponse(user)
	return &resp, nil
}

// BaseUsername is the first letter of the first name followed by the
// last name, lowercased and without spaces.
func BaseUsername(firstName, lastName string) string {
	first, _ := utf8.DecodeRuneInString(strings.TrimSpace(firstName))
	name := strings.TrimSpace(lastName)
	if first != utf8.RuneError {
		name = string(first) + name
	}
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// insertWithUsername picks base, or base plus one more than the number of
// similar usernames, and retries with the next suffix while the unique
// index reports a collision.
func (s *Service) insertWithUsername(ctx context.Context, user *model.User, base string) error {
	taken, err := s.repo.Count(ctx, query.Users(&model.UserSearchRequest{Username: filter.Some(base)}))
	if err != nil {
		return fmt.Errorf("failed to count usernames: %w", err)
	}

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		user.Username = base
		if taken > 0 {
			user.Username = base + strconv.FormatInt(taken+1, 10)
		}

		err := s.repo.Create(ctx, user)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return service.Translate("User", err)
		}
		taken++
	}
	return apperrors.Conflict("Could not generate a unique username.", repository.ErrDuplicate)
}

// Search lists users. Non-administrators only ever see their own firm.
func (s *Service) Search(ctx context.Context, actor principal.Principal, req *model.UserSearchRequest) (filter.Page[model.UserResponse], error) {
	spec := query.Users(req)
	if actor.Role != model.RoleAdministrator {
		spec = query.InFirm(spec, actor.FirmID)
	}

	q, err := filter.Paginate(spec, req.PageRequest, query.UserSorting)
	if err != nil {
		return filter.Page[model.UserResponse]{}, err
	}

	users, total, err := s.repo.Search(ctx, q)
	if err != nil {
		return filter.Page[model.UserResponse]{}, fmt.Errorf("failed to search users: %w", err)
	}

	page := filter.NewPage(users, q, total)
	return filter.MapPage(page, model.NewUserResponse), nil
}

// Update changes profile fields and flags. Password and role only change
// for administrators; changing either ends the user's session.
func (s *Service) Update(ctx context.Context, actor principal.Principal, req *model.UserRequest) (*model.UserResponse, error) {
	user, err := s.load(ctx, actor, req.ID)
	if err != nil {
		return nil, err
	}
	if actor.Role == model.RoleManager && user.ID != actor.UserID && user.Role != model.RoleEmployee {
		return nil, apperrors.Forbidden(policy.ReasonManagerUpdate)
	}

	user.FirstName = service.Merge(user.FirstName, req.FirstName)
	user.LastName = service.Merge(user.LastName, req.LastName)
	user.Address = service.Merge(user.Address, req.Address)
	user.Phone = service.Merge(user.Phone, req.Phone)
	user.Email = service.Merge(user.Email, req.Email)
	user.UniqueIdentifier = service.Merge(user.UniqueIdentifier, req.UniqueIdentifier)
	if req.Enabled != nil {
		user.Enabled = *req.Enabled
	}
	if req.Locked != nil {
		user.Locked = *req.Locked
	}

	revoke := false
	if actor.Role == model.RoleAdministrator {
		if req.Role != nil && *req.Role != user.Role {
			user.Role = *req.Role
			revoke = true
		}
		if req.Password != "" {
			hash, err := s.hash(req.Password)
			if err != nil {
				return nil, err
			}
			user.PasswordHash = hash
			revoke = true
		}
	}
	user.StampUpdated(actor.UserID, s.now())

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, service.Translate("User", err)
	}
	s.principals.Invalidate(user.ID)

	if revoke {
		if err := s.tokens.Revoke(ctx, user.ID); err != nil {
			log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to revoke token after credential change")
		}
	}

	resp := model.NewUserResponse(user)
	return &resp, nil
}

// Delete ends the user's session and removes the user.
func (s *Service) Delete(ctx context.Context, actor principal.Principal, id int64) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}

	if err := s.tokens.Revoke(ctx, id); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.principals.Invalidate(id)

	if err := s.repo.Delete(ctx, id); err != nil {
		return service.Translate("User", err)
	}

	log.Info().Int64("user_id", id).Int64("deleted_by", actor.UserID).Msg("user deleted")
	return nil
}

// load fetches a user the actor may see. Users of other firms are
// reported as missing to non-administrators.
func (s *Service) load(ctx context.Context, actor principal.Principal, id int64) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, service.Translate("User", err)
	}
	if actor.Role != model.RoleAdministrator && user.FirmID != actor.FirmID {
		return nil, apperrors.NotFound("User", nil)
	}
	return user, nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrHashingFailed) {
			return "", apperrors.Internal(err)
		}
		return "", apperrors.BadRequest(err.Error(), err)
	}
	return hash, nil
}

func person(req *model.UserRequest) model.Person {
	return model.Person{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Address:          req.Address,
		Phone:            req.Phone,
		Email:            req.Email,
		UniqueIdentifier: req.UniqueIdentifier,
	}
}

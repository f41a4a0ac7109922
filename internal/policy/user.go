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

// UserCreate requires every field. Managers may only create employees.
func UserCreate() Policy {
	return Func[*model.UserRequest](func(_ context.Context, actor principal.Principal, req *model.UserRequest) error {
		if req == nil || req.Role == nil || req.Enabled == nil ||
			blank(req.Password, req.FirstName, req.LastName, req.Email, req.Phone, req.UniqueIdentifier, req.Address) {
			return malformed()
		}

		switch actor.Role {
		case model.RoleAdministrator:
			return nil
		case model.RoleManager:
			if *req.Role != model.RoleEmployee {
				return apperrors.Forbidden(ReasonManagerCreate)
			}
			return nil
		default:
			return unsupportedRole(actor)
		}
	})
}

// UserRead scopes a manager's search to their own firm and to employees
// and managers.
func UserRead() Policy {
	return Func[*model.UserSearchRequest](func(_ context.Context, actor principal.Principal, req *model.UserSearchRequest) error {
		switch actor.Role {
		case model.RoleAdministrator:
			return nil
		case model.RoleManager:
			if req == nil {
				return malformed()
			}
			roles := managerVisibleRoles(req.Roles)
			if len(roles) == 0 {
				return apperrors.Forbidden(ReasonInsufficient)
			}
			req.FirmID = filter.Some(actor.FirmID)
			req.Roles = roles
			return nil
		default:
			return unsupportedRole(actor)
		}
	})
}

// managerVisibleRoles narrows requested to the roles a manager may list.
// No requested roles means all of them.
func managerVisibleRoles(requested []model.Role) []model.Role {
	visible := []model.Role{model.RoleEmployee, model.RoleManager}
	if len(requested) == 0 {
		return visible
	}

	var out []model.Role
	for _, v := range visible {
		for _, r := range requested {
			if r == v {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// UserUpdate looks the target up first. Managers may update employees
// of their firm and themselves, and never change passwords or roles.
func UserUpdate(users repository.UserRepository) Policy {
	return Func[*model.UserRequest](func(ctx context.Context, actor principal.Principal, req *model.UserRequest) error {
		if req == nil {
			return malformed()
		}
		target, err := lookupUser(ctx, users, req.ID)
		if err != nil {
			return err
		}

		switch actor.Role {
		case model.RoleAdministrator:
			return nil
		case model.RoleManager:
			if target.FirmID != actor.FirmID {
				return apperrors.NotFound("User", nil)
			}
			if target.ID != actor.UserID && target.Role != model.RoleEmployee {
				return apperrors.Forbidden(ReasonManagerUpdate)
			}
			if req.Password != "" || req.Role != nil {
				return apperrors.Forbidden(ReasonInsufficient)
			}
			return nil
		default:
			return unsupportedRole(actor)
		}
	})
}

// UserDelete looks the target up first, so a missing user is reported
// as not found rather than denied.
func UserDelete(users repository.UserRepository) Policy {
	return Func[int64](func(ctx context.Context, actor principal.Principal, id int64) error {
		target, err := lookupUser(ctx, users, id)
		if err != nil {
			return err
		}

		switch actor.Role {
		case model.RoleAdministrator:
			return nil
		case model.RoleManager:
			if target.FirmID != actor.FirmID {
				return apperrors.NotFound("User", nil)
			}
			if target.Role != model.RoleEmployee {
				return apperrors.Forbidden(ReasonManagerDelete)
			}
			return nil
		default:
			return unsupportedRole(actor)
		}
	})
}

// lookupUser reports a missing target as not found, ahead of any denial.
func lookupUser(ctx context.Context, users repository.UserRepository, id int64) (*model.User, error) {
	target, err := users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User", nil)
		}
		return nil, apperrors.Internal(err)
	}
	return target, nil
}

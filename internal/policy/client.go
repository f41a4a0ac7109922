package policy

import (
	"context"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/principal"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

func ClientCreate() Policy {
	return Func[*model.ClientRequest](func(_ context.Context, actor principal.Principal, req *model.ClientRequest) error {
		if req == nil || blank(req.FirstName, req.LastName, req.Email, req.Phone) {
			return malformed()
		}
		return anyRole(actor)
	})
}

func ClientRead() Policy {
	return Func[*model.ClientSearchRequest](func(_ context.Context, actor principal.Principal, _ *model.ClientSearchRequest) error {
		return anyRole(actor)
	})
}

func ClientUpdate() Policy {
	return Func[*model.ClientRequest](func(_ context.Context, actor principal.Principal, req *model.ClientRequest) error {
		if req == nil {
			return malformed()
		}
		return anyRole(actor)
	})
}

func ClientDelete() Policy {
	return Func[int64](func(_ context.Context, actor principal.Principal, _ int64) error {
		switch actor.Role {
		case model.RoleAdministrator, model.RoleManager:
			return nil
		case model.RoleEmployee:
			return apperrors.Forbidden(ReasonClientDelete)
		default:
			return unsupportedRole(actor)
		}
	})
}

func anyRole(actor principal.Principal) error {
	if !actor.Role.Valid() {
		return unsupportedRole(actor)
	}
	return nil
}

package policy

import (
	"context"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/principal"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

func AppointmentTypeCreate() Policy {
	return Func[*model.AppointmentTypeRequest](func(_ context.Context, actor principal.Principal, req *model.AppointmentTypeRequest) error {
		if req == nil || blank(req.Name) || req.DurationMinutes == nil || *req.DurationMinutes <= 0 || !req.Currency.Valid() {
			return malformed()
		}
		return managerOrAbove(actor)
	})
}

func AppointmentTypeRead() Policy {
	return Func[*model.AppointmentTypeSearchRequest](func(_ context.Context, actor principal.Principal, _ *model.AppointmentTypeSearchRequest) error {
		return anyRole(actor)
	})
}

func AppointmentTypeUpdate() Policy {
	return Func[*model.AppointmentTypeRequest](func(_ context.Context, actor principal.Principal, req *model.AppointmentTypeRequest) error {
		if req == nil {
			return malformed()
		}
		return managerOrAbove(actor)
	})
}

func AppointmentTypeDelete() Policy {
	return Func[int64](func(_ context.Context, actor principal.Principal, _ int64) error {
		return managerOrAbove(actor)
	})
}

func managerOrAbove(actor principal.Principal) error {
	switch actor.Role {
	case model.RoleAdministrator, model.RoleManager:
		return nil
	case model.RoleEmployee:
		return apperrors.Forbidden(ReasonTypeManagement)
	default:
		return unsupportedRole(actor)
	}
}

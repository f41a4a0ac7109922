// Package policy holds one authorization unit per (entity, operation)
// pair. A policy may reject a request or rewrite it in place before the
// operation runs.
package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwalitptl/chronosync/internal/principal"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

type Entity string

const (
	EntityUser            Entity = "user"
	EntityClient          Entity = "client"
	EntityAppointmentType Entity = "appointmentType"
	EntityAppointment     Entity = "appointment"
)

func Entities() []Entity {
	return []Entity{EntityUser, EntityClient, EntityAppointmentType, EntityAppointment}
}

type Operation string

const (
	OpCreate Operation = "CREATE"
	OpRead   Operation = "READ"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

func Operations() []Operation {
	return []Operation{OpCreate, OpRead, OpUpdate, OpDelete}
}

// Key identifies one policy unit.
type Key struct {
	Entity    Entity
	Operation Operation
}

// String is the unit name, e.g. userCreatePolicy.
func (k Key) String() string {
	op := strings.ToLower(string(k.Operation))
	return string(k.Entity) + strings.ToUpper(op[:1]) + op[1:] + "Policy"
}

// Policy validates one request. Returned errors reach the client
// unchanged.
type Policy interface {
	Validate(ctx context.Context, actor principal.Principal, request any) error
}

// Func is a Policy over a concrete request type. Pointer request types
// let the policy rewrite the request the operation will see.
type Func[R any] func(ctx context.Context, actor principal.Principal, request R) error

func (f Func[R]) Validate(ctx context.Context, actor principal.Principal, request any) error {
	r, ok := request.(R)
	if !ok {
		var want R
		return apperrors.Configuration(fmt.Sprintf("policy expects %T, got %T", want, request))
	}
	return f(ctx, actor, r)
}

// Deny messages are part of the API; clients display them as is.
const (
	ReasonEmptyEntity     = "Entity cannot be empty."
	ReasonInsufficient    = "Insufficient privileges."
	ReasonManagerCreate   = "Manager can only create employee users."
	ReasonManagerUpdate   = "Manager can only update employee users."
	ReasonManagerDelete   = "Manager can only delete employee users."
	ReasonClientDelete    = "Employees cannot delete clients."
	ReasonTypeManagement  = "Only managers can manage appointment types."
	ReasonOwnSchedule     = "Employees can only schedule their own appointments."
	ReasonOwnAppointments = "Employees can only modify their own appointments."
)

func unsupportedRole(actor principal.Principal) error {
	return apperrors.Forbidden(fmt.Sprintf("Unsupported role: %s", actor.Role))
}

func malformed() error {
	return apperrors.BadRequest(ReasonEmptyEntity, nil)
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

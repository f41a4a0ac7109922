package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jwalitptl/chronosync/internal/repository"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

// Registry is the static (entity, operation) -> policy table.
type Registry struct {
	policies map[Key]Policy
}

// NewRegistry copies table and checks that every entity has a policy for
// every operation. An incomplete table is a configuration error.
func NewRegistry(table map[Key]Policy) (*Registry, error) {
	r := &Registry{policies: make(map[Key]Policy, len(table))}
	for k, p := range table {
		r.policies[k] = p
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate reports every missing or nil unit.
func (r *Registry) Validate() error {
	var missing []string
	for _, e := range Entities() {
		for _, op := range Operations() {
			k := Key{Entity: e, Operation: op}
			if p, ok := r.policies[k]; !ok || p == nil {
				missing = append(missing, k.String())
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return apperrors.Configuration("missing policies: " + strings.Join(missing, ", "))
	}
	return nil
}

func (r *Registry) Lookup(entity Entity, op Operation) (Policy, error) {
	p, ok := r.policies[Key{Entity: entity, Operation: op}]
	if !ok || p == nil {
		return nil, apperrors.Configuration(fmt.Sprintf("no policy registered for %s", Key{entity, op}))
	}
	return p, nil
}

// Deps are the lookups some policies need to inspect the target row.
type Deps struct {
	Users        repository.UserRepository
	Appointments repository.AppointmentRepository
}

// Table is the full policy table.
func Table(d Deps) map[Key]Policy {
	return map[Key]Policy{
		{EntityUser, OpCreate}: UserCreate(),
		{EntityUser, OpRead}:   UserRead(),
		{EntityUser, OpUpdate}: UserUpdate(d.Users),
		{EntityUser, OpDelete}: UserDelete(d.Users),

		{EntityClient, OpCreate}: ClientCreate(),
		{EntityClient, OpRead}:   ClientRead(),
		{EntityClient, OpUpdate}: ClientUpdate(),
		{EntityClient, OpDelete}: ClientDelete(),

		{EntityAppointmentType, OpCreate}: AppointmentTypeCreate(),
		{EntityAppointmentType, OpRead}:   AppointmentTypeRead(),
		{EntityAppointmentType, OpUpdate}: AppointmentTypeUpdate(),
		{EntityAppointmentType, OpDelete}: AppointmentTypeDelete(),

		{EntityAppointment, OpCreate}: AppointmentCreate(),
		{EntityAppointment, OpRead}:   AppointmentRead(),
		{EntityAppointment, OpUpdate}: AppointmentUpdate(d.Appointments),
		{EntityAppointment, OpDelete}: AppointmentDelete(d.Appointments),
	}
}

func NewDefaultRegistry(d Deps) (*Registry, error) {
	return NewRegistry(Table(d))
}

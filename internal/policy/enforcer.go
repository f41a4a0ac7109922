package policy

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/chronosync/internal/principal"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
	"github.com/jwalitptl/chronosync/pkg/metrics"
)

// Enforcer resolves and runs the policy for an operation.
type Enforcer struct {
	registry *Registry
	metrics  *metrics.Metrics
}

// NewEnforcer creates an enforcer. m may be nil.
func NewEnforcer(registry *Registry, m *metrics.Metrics) *Enforcer {
	return &Enforcer{registry: registry, metrics: m}
}

// Enforce runs the (entity, op) policy against request. Pointer requests
// may be rewritten in place; callers must pass the same value on to the
// operation.
func (e *Enforcer) Enforce(ctx context.Context, entity Entity, op Operation, actor principal.Principal, request any) error {
	p, err := e.registry.Lookup(entity, op)
	if err != nil {
		e.record(entity, op, "error")
		log.Error().Err(err).Str("entity", string(entity)).Str("operation", string(op)).Msg("policy lookup failed")
		return err
	}

	if err := p.Validate(ctx, actor, request); err != nil {
		outcome := "deny"
		if !apperrors.Is(err, apperrors.ErrForbidden) {
			outcome = "error"
		}
		e.record(entity, op, outcome)
		log.Debug().
			Err(err).
			Str("entity", string(entity)).
			Str("operation", string(op)).
			Str("role", string(actor.Role)).
			Int64("user_id", actor.UserID).
			Msg("policy rejected request")
		return err
	}

	e.record(entity, op, "allow")
	return nil
}

func (e *Enforcer) record(entity Entity, op Operation, outcome string) {
	if e.metrics == nil {
		return
	}
	e.metrics.PolicyDecisions.WithLabelValues(string(entity), string(op), outcome).Inc()
}

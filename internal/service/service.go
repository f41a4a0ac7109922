// Package service holds what the entity services share.
package service

import (
	"errors"

	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/repository"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

// Translate maps a repository error for resource onto an application error.
// Application errors pass through unchanged.
func Translate(resource string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(resource, err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict(resource+" already exists.", err)
	case errors.Is(err, repository.ErrInUse):
		return apperrors.Conflict(resource+" is still in use.", err)
	default:
		return apperrors.Internal(err)
	}
}

// Merge returns update when it is not blank, current otherwise.
func Merge(current, update string) string {
	if update == "" {
		return current
	}
	return update
}

// Incomplete is the error for a create request that reaches a service
// with a required reference unset.
func Incomplete() error {
	return apperrors.BadRequest(policy.ReasonEmptyEntity, nil)
}

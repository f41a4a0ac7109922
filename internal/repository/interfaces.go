package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/chronosync/internal/filter"
	"github.com/jwalitptl/chronosync/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrInUse     = errors.New("record is still referenced")
)

// All repository interfaces in one file
type (
	// TxManager runs fn in one transaction. Repositories called with the
	// context passed to fn join that transaction.
	TxManager interface {
		WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	}

	// EntityRepository is the storage contract shared by every tenant entity.
	// Update and Delete return ErrNotFound when no row has the id; they never
	// insert. Create and Update return ErrDuplicate on a unique violation;
	// Delete returns ErrInUse while other rows still reference the target.
	EntityRepository[T any] interface {
		Create(ctx context.Context, entity *T) error
		Get(ctx context.Context, id int64) (*T, error)
		FindOne(ctx context.Context, spec filter.Spec) (*T, error)
		Count(ctx context.Context, spec filter.Spec) (int64, error)
		Search(ctx context.Context, q filter.Query) ([]*T, int64, error)
		Update(ctx context.Context, entity *T) error
		Delete(ctx context.Context, id int64) error
	}

	FirmRepository interface {
		EntityRepository[model.Firm]
	}

	UserRepository interface {
		EntityRepository[model.User]
	}

	ClientRepository interface {
		EntityRepository[model.Client]
	}

	AppointmentTypeRepository interface {
		EntityRepository[model.AppointmentType]
	}

	AppointmentRepository interface {
		EntityRepository[model.Appointment]
	}

	// TokenStore keeps at most one active token id per user.
	TokenStore interface {
		Store(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error
		Active(ctx context.Context, userID int64) (string, error)
		Revoke(ctx context.Context, userID int64) error
	}
)

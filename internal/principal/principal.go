// Package principal carries the authenticated actor through the request
// context and resolves it from verified token claims.
package principal

import (
	"context"

	"github.com/jwalitptl/chronosync/internal/model"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

// Principal is the authenticated actor of one request.
type Principal struct {
	UserID   int64      `json:"user_id"`
	FirmID   int64      `json:"firm_id"`
	Role     model.Role `json:"role"`
	Username string     `json:"username"`
}

type ctxKey struct{}

func NewContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext fails with an unauthorized error when no principal is set.
func FromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	if !ok || p.UserID == 0 {
		return Principal{}, apperrors.UnauthorizedMessage("authentication required")
	}
	return p, nil
}

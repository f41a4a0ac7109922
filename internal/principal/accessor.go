package principal

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/repository"
	"github.com/jwalitptl/chronosync/pkg/auth"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
)

const (
	ReasonNotEnabled = "User is not enabled. Please contact your manager."
	ReasonLocked     = "User is locked."
)

// Accessor resolves principals from token claims. The stored user row is
// authoritative for role and firm; rows are cached for a short TTL.
type Accessor struct {
	users repository.UserRepository
	cache *cache.Cache
}

func NewAccessor(users repository.UserRepository, ttl time.Duration) *Accessor {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Accessor{
		users: users,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (a *Accessor) Resolve(ctx context.Context, claims *auth.Claims) (Principal, error) {
	if claims == nil {
		return Principal{}, apperrors.UnauthorizedMessage("authentication required")
	}

	user, err := a.user(ctx, claims.UserID)
	if err != nil {
		return Principal{}, err
	}

	if user.FirmID != claims.FirmID || !strings.EqualFold(user.Username, claims.Subject) {
		a.Invalidate(claims.UserID)
		return Principal{}, apperrors.UnauthorizedMessage("token does not match user")
	}
	if !user.Enabled {
		return Principal{}, apperrors.Forbidden(ReasonNotEnabled)
	}
	if user.Locked {
		return Principal{}, apperrors.Forbidden(ReasonLocked)
	}

	return Of(user), nil
}

// Of builds the principal of a stored user.
func Of(user *model.User) Principal {
	return Principal{
		UserID:   user.ID,
		FirmID:   user.FirmID,
		Role:     user.Role,
		Username: user.Username,
	}
}

// Invalidate drops the cached row so the next request reloads it.
func (a *Accessor) Invalidate(userID int64) {
	a.cache.Delete(cacheKey(userID))
}

func (a *Accessor) user(ctx context.Context, id int64) (*model.User, error) {
	key := cacheKey(id)
	if cached, ok := a.cache.Get(key); ok {
		return cached.(*model.User), nil
	}

	user, err := a.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.UnauthorizedMessage("user no longer exists")
		}
		return nil, apperrors.Internal(err)
	}

	a.cache.Set(key, user, cache.DefaultExpiration)
	return user, nil
}

func cacheKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}

package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/pkg/auth"
	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
	"github.com/jwalitptl/chronosync/pkg/httputil"
)

// TokenVerifier checks a bearer token against signature, expiry and the
// token store.
type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// PrincipalResolver loads the principal behind verified claims.
type PrincipalResolver interface {
	Resolve(ctx context.Context, claims *auth.Claims) (principal.Principal, error)
}

type AuthMiddleware struct {
	tokens     TokenVerifier
	principals PrincipalResolver
}

func NewAuthMiddleware(tokens TokenVerifier, principals PrincipalResolver) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:     tokens,
		principals: principals,
	}
}

// Authenticate verifies the bearer token and puts the principal and the
// claims into the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.UnauthorizedMessage("missing authorization header"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			httputil.RespondWithError(c, apperrors.UnauthorizedMessage("invalid authorization format"))
			return
		}

		ctx := c.Request.Context()
		claims, err := m.tokens.Authenticate(ctx, strings.TrimSpace(token))
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		actor, err := m.principals.Resolve(ctx, claims)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}

		ctx = auth.NewContext(principal.NewContext(ctx, actor), claims)
		zerolog.Ctx(ctx).UpdateContext(func(l zerolog.Context) zerolog.Context {
			return l.Int64("user_id", actor.UserID).Int64("firm_id", actor.FirmID)
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole lets the request through when the principal's role ranks
// at least min.
func RequireRole(min model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := principal.FromContext(c.Request.Context())
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		if !actor.Role.AtLeast(min) {
			httputil.RespondWithError(c, apperrors.Forbidden("Insufficient privileges."))
			return
		}
		c.Next()
	}
}

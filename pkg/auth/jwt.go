package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims are the token claims the service relies on. Subject is the
// username and ID (jti) identifies the stored session.
type Claims struct {
	UserID int64    `json:"user_id"`
	FirmID int64    `json:"firm_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity is the subject a token is issued for.
type Identity struct {
	UserID   int64
	FirmID   int64
	Username string
	Role     string
}

// Token is a signed token and its metadata.
type Token struct {
	Value     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type JWTService interface {
	Issue(identity Identity) (*Token, error)
	Parse(token string) (*Claims, error)
}

type hmacService struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewJWTService signs HS256 tokens with secret.
func NewJWTService(secret, issuer string, expiry time.Duration) JWTService {
	return &hmacService{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		now:    time.Now,
	}
}

func (s *hmacService) Issue(identity Identity) (*Token, error) {
	now := s.now()
	expiresAt := now.Add(s.expiry)
	id := uuid.NewString()

	claims := Claims{
		UserID: identity.UserID,
		FirmID: identity.FirmID,
		Roles:  []string{identity.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   identity.Username,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{Value: signed, ID: id, IssuedAt: now, ExpiresAt: expiresAt}, nil
}

func (s *hmacService) Parse(tokenString string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.UserID == 0 || len(claims.Roles) == 0 {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return &claims, nil
}

type claimsKey struct{}

// NewContext returns ctx carrying the verified claims of the request.
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext returns the claims stored by NewContext, or nil.
func FromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

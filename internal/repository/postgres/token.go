package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/chronosync/internal/repository"
)

// tokenRepository is the postgres TokenStore. One row per user; a new
// login overwrites the previous token.
type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(base BaseRepository) repository.TokenStore {
	return &tokenRepository{base}
}

func (r *tokenRepository) Store(ctx context.Context, userID int64, tokenID string, ttl time.Duration) (err error) {
	defer r.observe("user_tokens.store", time.Now(), &err)

	query := `
		INSERT INTO user_tokens (user_id, token_id, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET token_id = $2, expires_at = $3, created_at = NOW()
	`
	if _, err := r.conn(ctx).ExecContext(ctx, query, userID, tokenID, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("failed to store token: %w", mapError(err))
	}
	return nil
}

func (r *tokenRepository) Active(ctx context.Context, userID int64) (_ string, err error) {
	defer r.observe("user_tokens.active", time.Now(), &err)

	query := `
		SELECT token_id
		FROM user_tokens
		WHERE user_id = $1
		AND expires_at > NOW()
	`

	var tokenID string
	if err := sqlx.GetContext(ctx, r.conn(ctx), &tokenID, query, userID); err != nil {
		return "", mapError(err)
	}
	return tokenID, nil
}

func (r *tokenRepository) Revoke(ctx context.Context, userID int64) (err error) {
	defer r.observe("user_tokens.revoke", time.Now(), &err)

	query := `DELETE FROM user_tokens WHERE user_id = $1`
	if _, err := r.conn(ctx).ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

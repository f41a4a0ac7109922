package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/chronosync/internal/repository"
	"github.com/jwalitptl/chronosync/pkg/circuitbreaker"
	"github.com/jwalitptl/chronosync/pkg/metrics"
)

// NewClient parses url and checks the connection.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// TokenStore keeps the active token id of each user under
// <prefix>:token:<user id>, expiring with the token. Calls go through a
// circuit breaker so an unreachable Redis fails requests fast.
type TokenStore struct {
	client  redis.Cmdable
	prefix  string
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewTokenStore creates a token store. m may be nil.
func NewTokenStore(client redis.Cmdable, prefix string, m *metrics.Metrics) *TokenStore {
	return &TokenStore{
		client: client,
		prefix: prefix,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "redis-token-store",
			MaxFailures: 5,
			Timeout:     10 * time.Second,
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state changed")
			},
		}),
		metrics: m,
	}
}

var _ repository.TokenStore = (*TokenStore)(nil)

func (s *TokenStore) key(userID int64) string {
	return s.prefix + ":token:" + strconv.FormatInt(userID, 10)
}

func (s *TokenStore) Store(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	err := s.breaker.Execute(func() error {
		return s.client.Set(ctx, s.key(userID), tokenID, ttl).Err()
	})
	s.record("store", err)
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (s *TokenStore) Active(ctx context.Context, userID int64) (string, error) {
	var tokenID string
	missing := false
	err := s.breaker.Execute(func() error {
		var err error
		tokenID, err = s.client.Get(ctx, s.key(userID)).Result()
		if errors.Is(err, redis.Nil) {
			missing = true
			return nil
		}
		return err
	})
	s.record("active", err)
	if missing {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return tokenID, nil
}

func (s *TokenStore) Revoke(ctx context.Context, userID int64) error {
	err := s.breaker.Execute(func() error {
		return s.client.Del(ctx, s.key(userID)).Err()
	})
	s.record("revoke", err)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.TokenStoreOperations.WithLabelValues(operation, status).Inc()
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rentfolio/rentfolio/internal/shared"
)

// TokenStore issues and resolves opaque bearer tokens backed by Redis. A
// resolved token has its TTL refreshed so active sessions stay alive.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue creates a new bearer token for the user.
func (s *TokenStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(token), userID.String(), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user ID behind a token, refreshing its TTL. Unknown or
// expired tokens yield shared.ErrTokenInvalid.
func (s *TokenStore) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, shared.ErrTokenInvalid
	}
	raw, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, shared.ErrTokenInvalid
		}
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, shared.ErrTokenInvalid
	}
	_ = s.client.Expire(ctx, s.key(token), s.ttl).Err()
	return id, nil
}

// Revoke deletes a token. Revoking an unknown token is not an error.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// TTL exposes the configured token lifetime.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

func (s *TokenStore) key(token string) string {
	return "auth:token:" + token
}

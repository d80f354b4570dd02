package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "ensaj:revoked:"

// RedisTokenRevoker conserve les jti révoqués dans Redis avec une expiration
// égale à la durée de vie restante du jeton
type RedisTokenRevoker struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisTokenRevoker crée une nouvelle instance de RedisTokenRevoker
func NewRedisTokenRevoker(client *redis.Client) *RedisTokenRevoker {
	return &RedisTokenRevoker{client: client, now: time.Now}
}

// Revoke ajoute un jti à la liste de révocation
func (r *RedisTokenRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("erreur lors de la révocation du token: %w", err)
	}
	return nil
}

// IsRevoked indique si un jti a été révoqué
func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("erreur lors de la vérification du token: %w", err)
	}
	return n > 0, nil
}

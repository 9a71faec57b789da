// Package redis provides the Redis-backed vault for session state; it is
// the production default.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/proxymarket/admin-api/internal/ports"
)

// Vault stores session entries in Redis. TTL handling is delegated to
// Redis itself; entries written with a positive TTL disappear on their own
// once the backing token is dead.
type Vault struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.Vault = (*Vault)(nil)

// NewVault creates a Redis-backed vault.
func NewVault(client redis.UniversalClient) *Vault {
	return &Vault{client: client, prefix: "pm:"}
}

// NewVaultWithPrefix creates a Redis-backed vault with a custom key prefix.
func NewVaultWithPrefix(client redis.UniversalClient, prefix string) *Vault {
	return &Vault{client: client, prefix: prefix}
}

func (v *Vault) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, nil
	}
	val, err := v.client.Get(ctx, v.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (v *Vault) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return errors.New("vault key cannot be empty")
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := v.client.Set(ctx, v.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (v *Vault) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		prefixed = append(prefixed, v.prefix+k)
	}
	if len(prefixed) == 0 {
		return nil
	}
	if err := v.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

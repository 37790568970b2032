package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

// RedisStore keeps tokens as auth_<token> keys with an expiry.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (r *RedisStore) Resolve(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", models.ErrUnauthorized
	}
	userID, err := r.rdb.Get(ctx, tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && userID == "") {
		return "", models.ErrUnauthorized
	}
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}
	return userID, nil
}

func (r *RedisStore) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("create token: empty user id")
	}
	token := uuid.NewString()
	if err := r.rdb.Set(ctx, tokenKey(token), userID, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

func (r *RedisStore) Revoke(ctx context.Context, token string) error {
	n, err := r.rdb.Del(ctx, tokenKey(token)).Result()
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if n == 0 {
		return models.ErrUnauthorized
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

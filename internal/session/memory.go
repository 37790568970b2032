package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/PaulBabatuyi/FileTree-gRPC/internal/models"
)

// MemoryStore is an in-process token table with the same TTL semantics as
// RedisStore. Oldest tokens are evicted once maxSize is reached.
type MemoryStore struct {
	tokens *expirable.LRU[string, string]
}

func NewMemoryStore(maxSize int, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{tokens: expirable.NewLRU[string, string](maxSize, nil, ttl)}
}

func (m *MemoryStore) Resolve(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", models.ErrUnauthorized
	}
	userID, ok := m.tokens.Get(tokenKey(token))
	if !ok {
		return "", models.ErrUnauthorized
	}
	return userID, nil
}

func (m *MemoryStore) Create(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("create token: empty user id")
	}
	token := uuid.NewString()
	m.tokens.Add(tokenKey(token), userID)
	return token, nil
}

func (m *MemoryStore) Revoke(ctx context.Context, token string) error {
	if !m.tokens.Remove(tokenKey(token)) {
		return models.ErrUnauthorized
	}
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

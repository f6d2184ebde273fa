package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
)

// UserCachePrefix is the key prefix for cached user records.
const UserCachePrefix = "user:"

// ErrCacheMiss is returned by Get when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

// UserCache holds recently resolved users so the session resolver does not hit
// the database on every request. Users are immutable once created, so entries
// only leave through their TTL.
type UserCache interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	Set(ctx context.Context, u *model.User) error
}

// cachedUser is the stored form. model.User hides the password hash from
// JSON, and the hash is never needed by cache readers anyway.
type cachedUser struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisUserCache stores users as JSON strings with a TTL.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUserCache(client *redis.Client, ttl time.Duration) *RedisUserCache {
	return &RedisUserCache{client: client, ttl: ttl}
}

func userKey(id uuid.UUID) string {
	return UserCachePrefix + id.String()
}

func (c *RedisUserCache) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	raw, err := c.client.Get(ctx, userKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get cached user: %w", err)
	}

	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		log.Warn().Err(err).Str("user_id", id.String()).Msg("dropping corrupt user cache entry")
		_ = c.client.Del(ctx, userKey(id)).Err()
		return nil, ErrCacheMiss
	}
	return &model.User{
		ID:        cu.ID,
		FirstName: cu.FirstName,
		LastName:  cu.LastName,
		Email:     cu.Email,
		CreatedAt: cu.CreatedAt,
	}, nil
}

func (c *RedisUserCache) Set(ctx context.Context, u *model.User) error {
	raw, err := json.Marshal(cachedUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := c.client.Set(ctx, userKey(u.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache user: %w", err)
	}
	return nil
}

// NopUserCache is used when REDIS_URL is unset. Every Get misses.
type NopUserCache struct{}

func (NopUserCache) Get(context.Context, uuid.UUID) (*model.User, error) { return nil, ErrCacheMiss }
func (NopUserCache) Set(context.Context, *model.User) error             { return nil }

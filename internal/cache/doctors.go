package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

const doctorsKey = "doctors:all"

// Client is the subset of go-redis the doctors cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// DoctorsRepository is satisfied by store.DoctorsStore and by CachedDoctors.
type DoctorsRepository interface {
	Insert(ctx context.Context, d models.Doctor) (primitive.ObjectID, error)
	List(ctx context.Context) ([]models.Doctor, error)
}

// CachedDoctors serves the doctor list from Redis and drops the cached copy
// whenever a doctor is added. Redis failures fall through to the store.
type CachedDoctors struct {
	repo   DoctorsRepository
	client Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewCachedDoctors(repo DoctorsRepository, client Client, ttl time.Duration, log *slog.Logger) *CachedDoctors {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedDoctors{repo: repo, client: client, ttl: ttl, log: log}
}

func (c *CachedDoctors) List(ctx context.Context) ([]models.Doctor, error) {
	raw, err := c.client.Get(ctx, doctorsKey).Bytes()
	switch {
	case err == nil:
		var doctors []models.Doctor
		jsonErr := json.Unmarshal(raw, &doctors)
		if jsonErr == nil {
			c.log.DebugContext(ctx, "doctors cache hit", "count", len(doctors))
			return doctors, nil
		}
		c.log.WarnContext(ctx, "discarding unreadable doctors cache entry", "err", jsonErr)
	case errors.Is(err, redis.Nil):
		c.log.DebugContext(ctx, "doctors cache miss")
	default:
		c.log.WarnContext(ctx, "doctors cache read failed", "err", err)
	}

	doctors, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(doctors)
	if err != nil {
		c.log.WarnContext(ctx, "failed to encode doctors for cache", "err", err)
		return doctors, nil
	}
	if err := c.client.Set(ctx, doctorsKey, payload, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "doctors cache write failed", "err", err)
	}
	return doctors, nil
}

func (c *CachedDoctors) Insert(ctx context.Context, d models.Doctor) (primitive.ObjectID, error) {
	id, err := c.repo.Insert(ctx, d)
	if err != nil {
		return id, err
	}
	if err := c.client.Del(ctx, doctorsKey).Err(); err != nil {
		c.log.WarnContext(ctx, "doctors cache invalidation failed", "err", err)
	}
	return id, nil
}

// NewRedisClient connects and pings once so a bad address shows up at boot.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

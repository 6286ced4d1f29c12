// Package cache keeps per-person appointment lists in Redis.
//
// The cache is advisory: bookings never read it, and the service drops a
// person's entry after every booking attempt that may have changed the list.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Shivanand-hulikatti/appointment-booking/internal/model"
	"github.com/go-redis/redis/v8"
)

// AppointmentCache stores appointment lists keyed by person.
type AppointmentCache interface {
	// Get returns the cached list and whether it was present.
	Get(ctx context.Context, personID int64) ([]model.Appointment, bool, error)
	Set(ctx context.Context, personID int64, appts []model.Appointment) error
	Invalidate(ctx context.Context, personID int64) error
}

// Key returns the Redis key holding a person's appointment list.
func Key(personID int64) string {
	return "appointments:person:" + strconv.FormatInt(personID, 10)
}

// RedisCache implements AppointmentCache on go-redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Options configures NewRedisClient.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a client and verifies it with PING.
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// NewRedisCache wraps client. Entries expire after ttl; zero keeps them
// until invalidated.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, personID int64) ([]model.Appointment, bool, error) {
	raw, err := c.client.Get(ctx, Key(personID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var appts []model.Appointment
	if err := json.Unmarshal(raw, &appts); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return appts, true, nil
}

func (c *RedisCache) Set(ctx context.Context, personID int64, appts []model.Appointment) error {
	if appts == nil {
		appts = []model.Appointment{}
	}
	raw, err := json.Marshal(appts)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(personID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, personID int64) error {
	if err := c.client.Del(ctx, Key(personID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// Noop is used when Redis is disabled. Every Get misses.
type Noop struct{}

func (Noop) Get(context.Context, int64) ([]model.Appointment, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, int64, []model.Appointment) error {
	return nil
}

func (Noop) Invalidate(context.Context, int64) error {
	return nil
}

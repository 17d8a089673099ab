// Package cache keeps recently evaluated reports in Redis so repeated
// identical requests skip the engine. The engine itself never caches.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/Underwriter/internal/loan"
	"github.com/MikeSquared-Agency/Underwriter/internal/policy"
	"github.com/MikeSquared-Agency/Underwriter/internal/simulation"
)

const keyPrefix = "underwriter:report:"

// ReportCache stores reports by request key.
type ReportCache interface {
	Get(ctx context.Context, key string) (*simulation.Report, bool, error)
	Set(ctx context.Context, key string, r simulation.Report) error
}

// Key derives the cache key for one request under one policy. The policy
// document is part of the hash, so re-saving a version under the same name
// never serves reports computed with the old thresholds. Decimal amounts are
// normalized, so "1e6" and "1000000" share a key.
func Key(p policy.Policy, profile loan.ApplicantProfile, req loan.Request, callerRole string) (string, error) {
	payload, err := json.Marshal(struct {
		Policy  policy.Policy         `json:"policy"`
		Profile loan.ApplicantProfile `json:"profile"`
		Request loan.Request          `json:"request"`
		Role    string                `json:"role"`
	}{p, profile, req, strings.TrimSpace(callerRole)})
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return keyPrefix + p.Version + ":" + hex.EncodeToString(sum[:]), nil
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Dial connects to Redis and verifies the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (*simulation.Report, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var r simulation.Report
	if err := json.Unmarshal(data, &r); err != nil {
		// a stale entry from an older report shape counts as a miss
		_ = c.client.Del(ctx, key).Err()
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, r simulation.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

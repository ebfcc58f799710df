package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"roster/internal/branch/models"
	"roster/pkg/domain"
)

const (
	branchKeyPrefix = "roster:branch:"
	activeKey       = "roster:branches:active"
)

// Redis shares cached branch lookups across instances. Entries are JSON
// values written with SET ... EX.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed cache. The client lifecycle is managed
// by the caller.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) GetBranch(ctx context.Context, id domain.BranchID) (Lookup, error) {
	var lookup Lookup
	if err := c.get(ctx, branchKeyPrefix+string(id), &lookup); err != nil {
		return Lookup{}, err
	}
	return lookup, nil
}

func (c *Redis) SetBranch(ctx context.Context, id domain.BranchID, lookup Lookup) error {
	return c.set(ctx, branchKeyPrefix+string(id), lookup)
}

func (c *Redis) GetActive(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	if err := c.get(ctx, activeKey, &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

func (c *Redis) SetActive(ctx context.Context, branches []models.Branch) error {
	if branches == nil {
		branches = []models.Branch{}
	}
	return c.set(ctx, activeKey, branches)
}

func (c *Redis) get(ctx context.Context, key string, dst any) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (c *Redis) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

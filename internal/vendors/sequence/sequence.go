// Package sequence allocates registration numbers. Numbers are strictly
// increasing over the system lifetime and never reissued; a number consumed
// by a failed insert leaves a gap.
package sequence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"roster/pkg/platform/tx"
)

// ErrExhausted is returned once the sequence has reached math.MaxInt64.
var ErrExhausted = errors.New("registration sequence exhausted")

// Allocator hands out the next registration number.
type Allocator interface {
	Next(ctx context.Context) (int64, error)
}

// Counter is an in-process allocator. The zero value starts at 1.
type Counter struct {
	last atomic.Int64
}

// NewCounter returns a counter whose first Next returns start.
func NewCounter(start int64) *Counter {
	c := &Counter{}
	if start > 1 {
		c.last.Store(start - 1)
	}
	return c
}

func (c *Counter) Next(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for {
		cur := c.last.Load()
		if cur == math.MaxInt64 {
			return 0, ErrExhausted
		}
		if c.last.CompareAndSwap(cur, cur+1) {
			return cur + 1, nil
		}
	}
}

const sequenceName = "vendor_registration_seq"

// Postgres draws from a database sequence. nextval is never rolled back, so
// the number stays consumed even when the surrounding transaction fails.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Next(ctx context.Context) (int64, error) {
	var n int64
	err := tx.Executor(ctx, p.db).
		QueryRowContext(ctx, `SELECT nextval($1::regclass)`, sequenceName).
		Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("next registration sequence: %w", err)
	}
	return n, nil
}

// DefaultRedisKey holds the counter when using the Redis allocator.
const DefaultRedisKey = "roster:vendor:registration_seq"

// Redis increments a single key; INCR is atomic on the server and shared by
// every instance.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

func (r *Redis) Next(ctx context.Context) (int64, error) {
	n, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		if isOverflow(err) {
			return 0, ErrExhausted
		}
		return 0, fmt.Errorf("increment registration sequence: %w", err)
	}
	return n, nil
}

func isOverflow(err error) bool {
	var rerr redis.Error
	return errors.As(err, &rerr) && rerr.Error() == "ERR increment or decrement would overflow"
}

package branch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"roster/internal/branch/cache"
	"roster/internal/branch/metrics"
	"roster/internal/branch/models"
	"roster/pkg/domain"
	"roster/pkg/platform/circuit"
	"roster/pkg/platform/sentinel"
)

const (
	opFind = "find"
	opList = "list_active"
)

// DefaultUpstreamTimeout bounds one shared upstream call.
const DefaultUpstreamTimeout = 5 * time.Second

// CachedDirectory decorates a Directory with a TTL cache. Concurrent misses
// for the same key share one upstream call, which runs detached from any
// single caller; each caller stops waiting when its own context ends. Cache
// backend failures fall through to the upstream directory. An optional breaker fails upstream
// calls fast while the directory keeps erroring.
type CachedDirectory struct {
	upstream Directory
	cache    cache.Store
	group    singleflight.Group
	breaker  *circuit.Breaker
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a CachedDirectory.
type Option func(*CachedDirectory)

func WithLogger(logger *slog.Logger) Option {
	return func(d *CachedDirectory) { d.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *CachedDirectory) { d.metrics = m }
}

// WithBreaker guards upstream calls with b. Not-found answers count as
// successes.
func WithBreaker(b *circuit.Breaker) Option {
	return func(d *CachedDirectory) { d.breaker = b }
}

func WithUpstreamTimeout(timeout time.Duration) Option {
	return func(d *CachedDirectory) { d.timeout = timeout }
}

// NewCachedDirectory wraps upstream with store.
func NewCachedDirectory(upstream Directory, store cache.Store, opts ...Option) *CachedDirectory {
	d := &CachedDirectory{upstream: upstream, cache: store, timeout: DefaultUpstreamTimeout}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.timeout <= 0 {
		d.timeout = DefaultUpstreamTimeout
	}
	return d
}

func (d *CachedDirectory) FindByID(ctx context.Context, id domain.BranchID) (*models.Branch, error) {
	lookup, err := d.cache.GetBranch(ctx, id)
	switch {
	case err == nil:
		d.metrics.IncHit(opFind)
		return resolve(lookup)
	case errors.Is(err, cache.ErrMiss):
		d.metrics.IncMiss(opFind)
	default:
		d.cacheFailed(ctx, "read", err)
	}

	v, err := d.shared(ctx, "branch:"+string(id), func(ctx context.Context) (any, error) {
		var b *models.Branch
		err := d.callUpstream(ctx, opFind, func() (err error) {
			b, err = d.upstream.FindByID(ctx, id)
			return err
		})
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		lookup := cache.Lookup{Branch: b}
		if err := d.cache.SetBranch(ctx, id, lookup); err != nil {
			d.cacheFailed(ctx, "write", err)
		}
		return lookup, nil
	})
	if err != nil {
		return nil, err
	}
	return resolve(v.(cache.Lookup))
}

func (d *CachedDirectory) IsActive(ctx context.Context, id domain.BranchID) (bool, error) {
	return isActive(ctx, d, id)
}

func (d *CachedDirectory) ListActive(ctx context.Context) ([]models.Branch, error) {
	branches, err := d.cache.GetActive(ctx)
	switch {
	case err == nil:
		d.metrics.IncHit(opList)
		return branches, nil
	case errors.Is(err, cache.ErrMiss):
		d.metrics.IncMiss(opList)
	default:
		d.cacheFailed(ctx, "read", err)
	}

	v, err := d.shared(ctx, "branches:active", func(ctx context.Context) (any, error) {
		var branches []models.Branch
		err := d.callUpstream(ctx, opList, func() (err error) {
			branches, err = d.upstream.ListActive(ctx)
			return err
		})
		if err != nil {
			return nil, err
		}
		if err := d.cache.SetActive(ctx, branches); err != nil {
			d.cacheFailed(ctx, "write", err)
		}
		return branches, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]models.Branch(nil), v.([]models.Branch)...), nil
}

// shared joins or starts the flight for key. The flight gets its own
// deadline and keeps the caller's values but not its cancellation.
func (d *CachedDirectory) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := d.group.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		return fn(flightCtx)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *CachedDirectory) callUpstream(ctx context.Context, op string, call func() error) error {
	if d.breaker != nil && !d.breaker.Allow() {
		return fmt.Errorf("%w: branch directory circuit open", sentinel.ErrUnavailable)
	}
	d.metrics.IncUpstream(op)
	err := call()
	if d.breaker == nil {
		return err
	}
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		if _, change := d.breaker.RecordFailure(); change.Opened {
			d.logger.WarnContext(ctx, "branch directory circuit opened", "op", op, "error", err)
		}
		return err
	}
	if _, change := d.breaker.RecordSuccess(); change.Closed {
		d.logger.InfoContext(ctx, "branch directory circuit closed", "op", op)
	}
	return err
}

func (d *CachedDirectory) cacheFailed(ctx context.Context, op string, err error) {
	d.metrics.IncError()
	d.logger.WarnContext(ctx, "branch cache unavailable, using directory",
		"op", op,
		"error", err,
	)
}

func resolve(lookup cache.Lookup) (*models.Branch, error) {
	if lookup.Branch == nil {
		return nil, sentinel.ErrNotFound
	}
	b := *lookup.Branch
	return &b, nil
}

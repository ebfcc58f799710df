package branch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/internal/branch/cache"
	"roster/internal/branch/metrics"
	"roster/internal/branch/models"
	"roster/pkg/domain"
	"roster/pkg/platform/circuit"
	"roster/pkg/platform/sentinel"
)

type countingDirectory struct {
	Directory
	finds atomic.Int32
	lists atomic.Int32
}

func (c *countingDirectory) FindByID(ctx context.Context, id domain.BranchID) (*models.Branch, error) {
	c.finds.Add(1)
	return c.Directory.FindByID(ctx, id)
}

func (c *countingDirectory) ListActive(ctx context.Context) ([]models.Branch, error) {
	c.lists.Add(1)
	return c.Directory.ListActive(ctx)
}

type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) GetBranch(context.Context, domain.BranchID) (cache.Lookup, error) {
	return cache.Lookup{}, errCacheDown
}
func (brokenCache) SetBranch(context.Context, domain.BranchID, cache.Lookup) error {
	return errCacheDown
}
func (brokenCache) GetActive(context.Context) ([]models.Branch, error) { return nil, errCacheDown }
func (brokenCache) SetActive(context.Context, []models.Branch) error   { return errCacheDown }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedDirectory_CachesHitsAndMisses(t *testing.T) {
	upstream := &countingDirectory{Directory: NewMockDirectory(0, 0)}
	m := metrics.New(prometheus.NewRegistry())
	d := NewCachedDirectory(upstream, cache.NewInMemory(time.Minute), WithLogger(discardLogger()), WithMetrics(m))
	ctx := context.Background()

	for range 3 {
		b, err := d.FindByID(ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, "RJ", b.State)

		_, err = d.FindByID(ctx, "404")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	}

	assert.Equal(t, int32(2), upstream.finds.Load())
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CacheHits.WithLabelValues(opFind)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMisses.WithLabelValues(opFind)))
}

func TestCachedDirectory_IsActive(t *testing.T) {
	d := NewCachedDirectory(NewMockDirectory(0, 0), cache.NewInMemory(time.Minute))

	active, err := d.IsActive(context.Background(), "4")
	require.NoError(t, err)
	assert.False(t, active)

	active, err = d.IsActive(context.Background(), "3")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestCachedDirectory_CoalescesConcurrentMisses(t *testing.T) {
	upstream := &countingDirectory{Directory: NewMockDirectory(50*time.Millisecond, 50*time.Millisecond)}
	d := NewCachedDirectory(upstream, cache.NewInMemory(time.Minute))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.ListActive(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, upstream.lists.Load(), int32(2))
}

func TestCachedDirectory_FallsBackWhenCacheFails(t *testing.T) {
	upstream := &countingDirectory{Directory: NewMockDirectory(0, 0)}
	m := metrics.New(prometheus.NewRegistry())
	d := NewCachedDirectory(upstream, brokenCache{}, WithLogger(discardLogger()), WithMetrics(m))

	b, err := d.FindByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, domain.BranchID("1"), b.ID)

	branches, err := d.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, branches, 3)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.CacheErrors))
}

func TestCachedDirectory_DoesNotCacheUpstreamErrors(t *testing.T) {
	upstream := &countingDirectory{Directory: &failingDirectory{}}
	d := NewCachedDirectory(upstream, cache.NewInMemory(time.Minute))

	_, err := d.FindByID(context.Background(), "1")
	require.Error(t, err)

	upstream.Directory = NewMockDirectory(0, 0)
	b, err := d.FindByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, domain.BranchID("1"), b.ID)
	assert.Equal(t, int32(2), upstream.finds.Load())
}

func TestCachedDirectory_CancelledCallerSkipsUpstream(t *testing.T) {
	upstream := &countingDirectory{Directory: NewMockDirectory(0, 0)}
	d := NewCachedDirectory(upstream, cache.NewInMemory(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.FindByID(ctx, "1")

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, upstream.finds.Load())
}

// gatedDirectory holds FindByID until release is closed or ctx ends.
type gatedDirectory struct {
	Directory
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedDirectory) FindByID(ctx context.Context, id domain.BranchID) (*models.Branch, error) {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		return g.Directory.FindByID(ctx, id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCachedDirectory_WaiterOutlivesCancelledLeader(t *testing.T) {
	upstream := &gatedDirectory{
		Directory: NewMockDirectory(0, 0),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	d := NewCachedDirectory(upstream, cache.NewInMemory(time.Minute), WithLogger(discardLogger()))

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leader := make(chan error, 1)
	go func() {
		_, err := d.FindByID(leaderCtx, "2")
		leader <- err
	}()
	<-upstream.entered

	type result struct {
		branch *models.Branch
		err    error
	}
	waiter := make(chan result, 1)
	go func() {
		b, err := d.FindByID(context.Background(), "2")
		waiter <- result{b, err}
	}()
	time.Sleep(10 * time.Millisecond)

	cancelLeader()
	select {
	case err := <-leader:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(upstream.release)
	select {
	case res := <-waiter:
		require.NoError(t, res.err)
		assert.Equal(t, "RJ", res.branch.State)
	case <-time.After(time.Second):
		t.Fatal("waiter did not get the shared result")
	}
}

func TestCachedDirectory_UpstreamTimeoutBoundsSharedCall(t *testing.T) {
	upstream := &gatedDirectory{
		Directory: NewMockDirectory(0, 0),
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	d := NewCachedDirectory(upstream, cache.NewInMemory(time.Minute), WithUpstreamTimeout(20*time.Millisecond))

	_, err := d.FindByID(context.Background(), "1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type failingDirectory struct {
	Directory
	calls atomic.Int32
}

func (f *failingDirectory) FindByID(context.Context, domain.BranchID) (*models.Branch, error) {
	f.calls.Add(1)
	return nil, errors.New("directory timeout")
}

func TestCachedDirectory_BreakerFailsFast(t *testing.T) {
	upstream := &failingDirectory{Directory: NewMockDirectory(0, 0)}
	breaker := circuit.New("branch-directory", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	d := NewCachedDirectory(upstream, cache.NewInMemory(time.Minute), WithLogger(discardLogger()), WithBreaker(breaker))
	ctx := context.Background()

	for range 2 {
		_, err := d.FindByID(ctx, "1")
		require.Error(t, err)
	}
	require.True(t, breaker.IsOpen())

	_, err := d.FindByID(ctx, "1")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Equal(t, int32(2), upstream.calls.Load())

	_, err = d.IsActive(ctx, "1")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestCachedDirectory_NotFoundKeepsBreakerClosed(t *testing.T) {
	breaker := circuit.New("branch-directory", circuit.WithFailureThreshold(1))
	d := NewCachedDirectory(NewMockDirectory(0, 0), cache.NewInMemory(time.Minute), WithBreaker(breaker))

	_, err := d.FindByID(context.Background(), "404")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.False(t, breaker.IsOpen())
}

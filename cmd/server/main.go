package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"roster/internal/branch"
	"roster/internal/branch/cache"
	branchmetrics "roster/internal/branch/metrics"
	httpapi "roster/internal/http"
	"roster/internal/platform/config"
	"roster/internal/platform/httpserver"
	"roster/internal/platform/logger"
	"roster/internal/platform/metrics"
	"roster/internal/platform/postgres"
	platformredis "roster/internal/platform/redis"
	"roster/internal/vendors/events"
	"roster/internal/vendors/handler"
	vendormetrics "roster/internal/vendors/metrics"
	"roster/internal/vendors/sequence"
	"roster/internal/vendors/service"
	processingstore "roster/internal/vendors/store/processing"
	vendorstore "roster/internal/vendors/store/vendors"
	"roster/internal/vendors/worker"
	"roster/pkg/platform/circuit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("roster stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("roster stopped")
}

// infra holds the optional backing services selected by configuration.
type infra struct {
	db        *sql.DB
	redis     *platformredis.Client
	publisher events.Publisher
	closers   []func()
	checks    map[string]httpapi.HealthCheck
}

func (i *infra) close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{checks: make(map[string]httpapi.HealthCheck)}

	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.db = db
		in.closers = append(in.closers, func() { _ = db.Close() })
		in.checks["postgres"] = db.PingContext
		if err := postgres.Migrate(ctx, db, log); err != nil {
			in.close()
			return nil, err
		}
	}

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		in.close()
		return nil, err
	}
	if rdb != nil {
		in.redis = rdb
		in.closers = append(in.closers, func() { _ = rdb.Close() })
		in.checks["redis"] = rdb.Health
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			in.close()
			return nil, err
		}
		in.closers = append(in.closers, kp.Close)
		if err := kp.EnsureTopic(ctx, cfg.Kafka.Partitions, -1); err != nil {
			in.close()
			return nil, err
		}
		in.publisher = kp
		in.checks["kafka"] = kp.Ping
	} else {
		in.publisher = events.NewLogPublisher(log)
	}
	return in, nil
}

func newAllocator(cfg config.PipelineConfig, in *infra, log *slog.Logger) (service.Allocator, error) {
	switch cfg.SequenceBackend {
	case config.SequencePostgres:
		if in.db == nil {
			return nil, errors.New("postgres sequence backend requires DATABASE_URL")
		}
		return sequence.NewPostgres(in.db), nil
	case config.SequenceRedis:
		if in.redis == nil {
			return nil, errors.New("redis sequence backend requires REDIS_URL")
		}
		return sequence.NewRedis(in.redis.Client, sequence.DefaultRedisKey), nil
	case config.SequenceMemory:
		if in.db != nil {
			log.Warn("in-memory registration sequence restarts at 1 on every boot; use the postgres backend with a database")
		}
		return sequence.NewCounter(1), nil
	}
	return nil, fmt.Errorf("unknown sequence backend %q", cfg.SequenceBackend)
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	in, err := connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	vendorMetrics := vendormetrics.New(reg)

	var (
		processing service.ProcessingStore
		vendors    service.VendorStore
		storeTx    service.StoreTx
	)
	if in.db != nil {
		processing = processingstore.NewPostgres(in.db)
		vendors = vendorstore.NewPostgres(in.db)
		storeTx = newVendorPostgresTx(in.db, cfg.Pipeline.TxTimeout)
	} else {
		processing = processingstore.NewInMemory()
		vendors = vendorstore.NewInMemory()
		storeTx = service.NewInMemoryTx(cfg.Pipeline.TxTimeout)
	}

	allocator, err := newAllocator(cfg.Pipeline, in, log)
	if err != nil {
		return err
	}

	var branchCache cache.Store = cache.NewInMemory(cfg.Branch.CacheTTL)
	if in.redis != nil {
		branchCache = cache.NewRedis(in.redis.Client, cfg.Branch.CacheTTL)
	}
	upstream := branch.NewMockDirectory(cfg.Branch.Latency, branch.DefaultListLatency)
	branches := branch.NewCachedDirectory(upstream, branchCache,
		branch.WithLogger(log),
		branch.WithMetrics(branchmetrics.New(reg)),
		branch.WithBreaker(circuit.New("branch-directory")),
	)

	dispatcher, err := worker.New(cfg.Pipeline.Workers, cfg.Pipeline.QueueSize,
		worker.WithLogger(log),
		worker.WithMetrics(vendorMetrics),
	)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(vendorMetrics),
		service.WithEventPublisher(in.publisher),
	}
	pipeline, err := service.NewPipeline(processing, vendors, branches, allocator, storeTx, opts...)
	if err != nil {
		return err
	}
	svc, err := service.New(processing, vendors, branches, pipeline, dispatcher, opts...)
	if err != nil {
		return err
	}

	router := httpapi.NewRouter(httpapi.Config{
		Logger:   log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Checks:   in.checks,
	}, handler.New(svc, log))
	srv := httpserver.New(cfg.Addr, router)

	// Workers stop only after the server has stopped accepting submissions.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	g := new(errgroup.Group)
	g.Go(func() error {
		err := dispatcher.Run(workerCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("starting roster", "addr", cfg.Addr, "sequence_backend", cfg.Pipeline.SequenceBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			stopWorkers()
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-workerCtx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		stopWorkers()
		if err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

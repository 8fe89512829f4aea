package loader

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/rowview/rowview/pkg/api"
	"github.com/rowview/rowview/pkg/logging"
	"github.com/rowview/rowview/pkg/ratelimit"
)

// Prometheus metrics for load operations.
var (
	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rowview_loads_total",
		Help: "Total load operations by strategy and result",
	}, []string{"strategy", "result"})

	loadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rowview_load_duration_seconds",
		Help:    "Wall-clock load duration in seconds by strategy",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"strategy"})

	rowsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rowview_rows_loaded",
		Help: "Row count of the last successful load",
	})
)

// Strategy selects how the dataset is retrieved.
type Strategy string

const (
	// StrategySingle retrieves the entire dataset in one request.
	StrategySingle Strategy = "single"

	// StrategySequential retrieves the dataset in batches, one at a time.
	StrategySequential Strategy = "sequential"

	// StrategyParallel retrieves batches in concurrency-bounded groups.
	StrategyParallel Strategy = "parallel"
)

// Config holds one load operation's settings. It is immutable during the
// operation.
type Config struct {
	// Strategy selects single, sequential, or parallel retrieval.
	Strategy Strategy

	// BatchSize is the number of records per request for batched strategies.
	BatchSize int

	// ParallelLimit is the maximum number of simultaneous in-flight requests
	// for the parallel strategy. It is the sole backpressure mechanism.
	ParallelLimit int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:      StrategySequential,
		BatchSize:     10000,
		ParallelLimit: 5,
	}
}

// Progress reports load progress after a completed batch (sequential) or a
// completed group (parallel). It is transient and discarded after the load.
type Progress struct {
	// Completed is the number of finished batches.
	Completed int

	// Total is the planned number of batches.
	Total int

	// Percent is round(100 * Completed / Total).
	Percent int

	// Strategy labels which mode produced this update.
	Strategy Strategy
}

// Result is a completed load.
type Result struct {
	// Rows is the full dataset in source order (ascending id).
	Rows []api.Row

	// ServerTime is the sum of each response's reported query_time_ms. It is
	// backend cost attribution, deliberately independent of wall-clock
	// overlap under parallelism.
	ServerTime time.Duration

	// Elapsed is the measured end-to-end wall-clock duration. Reported
	// separately from ServerTime, never reconciled with it.
	Elapsed time.Duration

	// Strategy that produced this result.
	Strategy Strategy

	// Batches is the number of requests issued (1 for single).
	Batches int

	// ConnectionPool reports whether the source served from its pool.
	ConnectionPool bool
}

// Loader orchestrates dataset retrieval.
type Loader struct {
	client     *api.Client
	onProgress func(Progress)
	logger     zerolog.Logger
}

// New creates a loader. onProgress may be nil.
func New(client *api.Client, onProgress func(Progress)) *Loader {
	return &Loader{
		client:     client,
		onProgress: onProgress,
		logger:     logging.NewLogger("loader"),
	}
}

// Load retrieves the full dataset according to cfg. Any request failure
// aborts the load and returns an error; no partial result is ever returned.
func (l *Loader) Load(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.ParallelLimit < 1 {
		cfg.ParallelLimit = DefaultConfig().ParallelLimit
	}

	start := time.Now()

	var (
		result *Result
		err    error
	)
	switch cfg.Strategy {
	case StrategySingle:
		result, err = l.loadSingle(ctx)
	case StrategySequential:
		result, err = l.loadSequential(ctx, cfg)
	case StrategyParallel:
		result, err = l.loadParallel(ctx, cfg)
	default:
		loadsTotal.WithLabelValues(string(cfg.Strategy), "error").Inc()
		return nil, ErrUnknownStrategy
	}

	elapsed := time.Since(start)
	loadDuration.WithLabelValues(string(cfg.Strategy)).Observe(elapsed.Seconds())

	if err != nil {
		loadsTotal.WithLabelValues(string(cfg.Strategy), "error").Inc()
		l.logger.Error().
			Err(err).
			Str("strategy", string(cfg.Strategy)).
			Dur("elapsed", elapsed).
			Msg("Load aborted")
		return nil, err
	}

	result.Elapsed = elapsed
	loadsTotal.WithLabelValues(string(cfg.Strategy), "success").Inc()
	rowsLoaded.Set(float64(len(result.Rows)))

	l.logger.Info().
		Str("strategy", string(cfg.Strategy)).
		Int("rows", len(result.Rows)).
		Int("batches", result.Batches).
		Dur("server_time", result.ServerTime).
		Dur("elapsed", elapsed).
		Msg("Load complete")

	return result, nil
}

// loadSingle retrieves the whole dataset with one /data/all request.
// No intermediate progress is observable.
func (l *Loader) loadSingle(ctx context.Context) (*Result, error) {
	resp, err := l.client.All(ctx)
	if err != nil {
		return nil, &BatchError{BatchIndex: 0, Offset: 0, Limit: 0, Err: err}
	}

	return &Result{
		Rows:           resp.Data,
		ServerTime:     api.QueryTime(resp.QueryTimeMS),
		Strategy:       StrategySingle,
		Batches:        1,
		ConnectionPool: resp.ConnectionPool,
	}, nil
}

// batch is one planned page request.
type batch struct {
	index  int
	offset int
	limit  int
}

// planBatches splits totalCount rows into ceil(totalCount/batchSize) batches
// at offsets 0, batchSize, 2*batchSize, ...
func planBatches(totalCount, batchSize int) []batch {
	n := (totalCount + batchSize - 1) / batchSize
	batches := make([]batch, 0, n)
	for i := 0; i < n; i++ {
		offset := i * batchSize
		limit := batchSize
		if offset+limit > totalCount {
			limit = totalCount - offset
		}
		batches = append(batches, batch{index: i, offset: offset, limit: limit})
	}
	return batches
}

// fetchCount plans a batched load. A failed count or a zero count is fatal:
// without a total there is no batch plan.
func (l *Loader) fetchCount(ctx context.Context) (int, time.Duration, error) {
	resp, err := l.client.Count(ctx)
	if err != nil {
		return 0, 0, &BatchError{BatchIndex: -1, Err: err}
	}
	if resp.Count <= 0 {
		return 0, 0, ErrCountUnavailable
	}
	return resp.Count, api.QueryTime(resp.QueryTimeMS), nil
}

func (l *Loader) reportProgress(completed, total int, strategy Strategy) {
	if l.onProgress == nil {
		return
	}
	l.onProgress(Progress{
		Completed: completed,
		Total:     total,
		Percent:   int(math.Round(100 * float64(completed) / float64(total))),
		Strategy:  strategy,
	})
}

// loadSequential issues the batch plan one request at a time. Request order
// equals batch order, so concatenation is trivially correct.
func (l *Loader) loadSequential(ctx context.Context, cfg Config) (*Result, error) {
	total, serverTime, err := l.fetchCount(ctx)
	if err != nil {
		return nil, err
	}

	batches := planBatches(total, cfg.BatchSize)
	l.logger.Info().
		Str("strategy", string(StrategySequential)).
		Int("total", total).
		Int("batches", len(batches)).
		Int("batch_size", cfg.BatchSize).
		Msg("Starting batched load")

	rows := make([]api.Row, 0, total)
	connectionPool := false

	for _, b := range batches {
		resp, err := l.client.Page(ctx, b.limit, b.offset)
		if err != nil {
			return nil, &BatchError{BatchIndex: b.index, Offset: b.offset, Limit: b.limit, Err: err}
		}

		rows = append(rows, resp.Data...)
		serverTime += api.QueryTime(resp.QueryTimeMS)
		connectionPool = resp.ConnectionPool

		l.logger.Debug().
			Int("batch", b.index).
			Int("offset", b.offset).
			Int("rows", len(resp.Data)).
			Msg("Batch fetched")

		l.reportProgress(b.index+1, len(batches), StrategySequential)
	}

	return &Result{
		Rows:           rows,
		ServerTime:     serverTime,
		Strategy:       StrategySequential,
		Batches:        len(batches),
		ConnectionPool: connectionPool,
	}, nil
}

// batchResult is one completed parallel batch request.
type batchResult struct {
	batch       batch
	rows        []api.Row
	queryTimeMS float64
	pool        bool
	err         error
}

// loadParallel issues the batch plan in groups of at most ParallelLimit
// concurrent requests. Each group is awaited as a whole and its results are
// sorted by batch index before concatenation; completion order under
// concurrency is not request order, so this sort is what keeps the final
// sequence identical to a sequential load.
func (l *Loader) loadParallel(ctx context.Context, cfg Config) (*Result, error) {
	total, serverTime, err := l.fetchCount(ctx)
	if err != nil {
		return nil, err
	}

	limiter, err := ratelimit.NewLimiter(cfg.ParallelLimit, l.logger)
	if err != nil {
		return nil, err
	}

	batches := planBatches(total, cfg.BatchSize)
	l.logger.Info().
		Str("strategy", string(StrategyParallel)).
		Int("total", total).
		Int("batches", len(batches)).
		Int("batch_size", cfg.BatchSize).
		Int("parallel_limit", limiter.Limit()).
		Msg("Starting parallel load")

	rows := make([]api.Row, 0, total)
	connectionPool := false
	completed := 0

	for groupStart := 0; groupStart < len(batches); groupStart += cfg.ParallelLimit {
		groupEnd := groupStart + cfg.ParallelLimit
		if groupEnd > len(batches) {
			groupEnd = len(batches)
		}
		group := batches[groupStart:groupEnd]

		results, err := l.fetchGroup(ctx, limiter, group)
		if err != nil {
			return nil, err
		}

		// Restore batch order within the group before concatenation.
		sort.Slice(results, func(i, j int) bool {
			return results[i].batch.index < results[j].batch.index
		})

		for _, res := range results {
			rows = append(rows, res.rows...)
			serverTime += api.QueryTime(res.queryTimeMS)
			connectionPool = res.pool
		}

		completed += len(group)
		l.logger.Debug().
			Int("completed", completed).
			Int("total_batches", len(batches)).
			Msg("Group fetched")

		l.reportProgress(completed, len(batches), StrategyParallel)
	}

	return &Result{
		Rows:           rows,
		ServerTime:     serverTime,
		Strategy:       StrategyParallel,
		Batches:        len(batches),
		ConnectionPool: connectionPool,
	}, nil
}

// fetchGroup issues one group of batch requests concurrently and awaits them
// all. The first failure (lowest batch index) aborts the load.
func (l *Loader) fetchGroup(ctx context.Context, limiter *ratelimit.Limiter, group []batch) ([]batchResult, error) {
	results := make([]batchResult, len(group))

	var wg sync.WaitGroup
	for i, b := range group {
		wg.Add(1)
		go func(slot int, b batch) {
			defer wg.Done()

			if err := limiter.Acquire(ctx); err != nil {
				results[slot] = batchResult{batch: b, err: err}
				return
			}
			defer limiter.Release()

			resp, err := l.client.Page(ctx, b.limit, b.offset)
			if err != nil {
				results[slot] = batchResult{batch: b, err: err}
				return
			}
			results[slot] = batchResult{
				batch:       b,
				rows:        resp.Data,
				queryTimeMS: resp.QueryTimeMS,
				pool:        resp.ConnectionPool,
			}
		}(i, b)
	}
	wg.Wait()

	for _, res := range results {
		if res.err != nil {
			return nil, &BatchError{
				BatchIndex: res.batch.index,
				Offset:     res.batch.offset,
				Limit:      res.batch.limit,
				Err:        res.err,
			}
		}
	}
	return results, nil
}

// Package worker values batches of stored catalogs on a bounded pool of workers.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/valuator/internal/domain/types"
	"github.com/okian/valuator/pkg/logger"
	"github.com/okian/valuator/pkg/metrics"
)

// defaultWorkerMultiplier scales runtime.NumCPU() into the default pool size.
// Catalog valuations mostly wait on the store, so the pool runs wider than
// the CPU count.
const defaultWorkerMultiplier = 2

// Estimator values one stored catalog.
type Estimator interface {
	EstimateCatalog(ctx context.Context, catalogID string, req types.ValuationRequest) (types.Report, error)
}

// Job is one catalog of a batch. Index is its position in the batch.
type Job struct {
	Index     int
	CatalogID string
}

// Result is the outcome for one catalog. Exactly one of Report and Err is set.
type Result struct {
	CatalogID string
	Report    types.Report
	Err       error
}

// Worker drains jobs and writes each result at the job's index.
type Worker struct {
	estimator Estimator
	logger    logger.Logger
}

// Run processes jobs until the channel is closed. Jobs left after ctx is
// cancelled are answered with the context error.
func (w *Worker) Run(ctx context.Context, req types.ValuationRequest, jobs <-chan Job, results []Result) {
	metrics.AddWorkerActive(1)
	defer metrics.AddWorkerActive(-1)

	for job := range jobs {
		results[job.Index] = w.process(ctx, req, job)
	}
}

func (w *Worker) process(ctx context.Context, req types.ValuationRequest, job Job) Result {
	res := Result{CatalogID: job.CatalogID}
	if err := ctx.Err(); err != nil {
		metrics.RecordBatchJob("cancelled")
		res.Err = fmt.Errorf("catalog %s not valued: %w", job.CatalogID, err)
		return res
	}

	start := time.Now()
	report, err := w.estimator.EstimateCatalog(ctx, job.CatalogID, req)
	metrics.RecordBatchJobLatency(metrics.Milliseconds(time.Since(start)))

	if err != nil {
		metrics.RecordBatchJob("error")
		w.logger.Debug(ctx, "catalog valuation failed",
			logger.String("catalog_id", job.CatalogID),
			logger.Error(err),
		)
		res.Err = err
		return res
	}
	metrics.RecordBatchJob("ok")
	res.Report = report
	return res
}

// Pool runs a batch on at most size workers.
type Pool struct {
	size      int
	estimator Estimator
	logger    logger.Logger
}

// NewPool creates a pool that values catalogs with estimator.
func NewPool(estimator Estimator, opts ...Option) *Pool {
	p := &Pool{
		size:      runtime.NumCPU() * defaultWorkerMultiplier,
		estimator: estimator,
		logger:    logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the maximum number of concurrent workers.
func (p *Pool) Size() int {
	return p.size
}

// Run values every catalog with req and returns the results in input order.
// It returns once every job has a result.
func (p *Pool) Run(ctx context.Context, catalogIDs []string, req types.ValuationRequest) []Result {
	results := make([]Result, len(catalogIDs))
	if len(catalogIDs) == 0 {
		return results
	}

	jobs := make(chan Job, len(catalogIDs))
	for i, id := range catalogIDs {
		jobs <- Job{Index: i, CatalogID: id}
	}
	close(jobs)

	n := min(p.size, len(catalogIDs))
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		name := "worker-" + strconv.Itoa(i)
		w := &Worker{
			estimator: p.estimator,
			logger:    p.logger.With(logger.String("worker", name)),
		}
		go func() {
			defer wg.Done()
			w.Run(ctx, req, jobs, results)
		}()
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.logger.Info(ctx, "batch valuation finished",
		logger.Int("catalogs", len(catalogIDs)),
		logger.Int("workers", n),
		logger.Int("failed", failed),
	)
	return results
}

package batch

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"options-lab/internal/analyzer"
	"options-lab/internal/logging"
	"options-lab/internal/models"
	"options-lab/internal/strategy"
)

// Job is one strategy to build and analyze.
type Job struct {
	Name    string
	Symbol  string
	Context models.StrategyContext
	Params  strategy.Params
}

// Result is the outcome of one Job. Err is set instead of Strategy and
// Analysis when the job failed.
type Result struct {
	Name     string                   `json:"name" yaml:"name"`
	Strategy *models.Strategy         `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Analysis *models.StrategyAnalysis `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Error    string                   `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration            `json:"duration_ns" yaml:"duration_ns"`
	Err      error                    `json:"-" yaml:"-"`
}

// OK reports whether the job succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Runner analyzes jobs on a long-lived worker pool.
type Runner struct {
	pool   *WorkerPool
	logger zerolog.Logger
}

// NewRunner starts a runner with the given number of workers.
func NewRunner(workers int, logger zerolog.Logger) *Runner {
	pool := NewWorkerPool(workers)
	pool.Start()
	return &Runner{
		pool:   pool,
		logger: logger.With().Str("component", "batch").Logger(),
	}
}

// Close waits for in-flight jobs and stops the workers.
func (r *Runner) Close() {
	r.pool.Stop()
}

// Stats returns the underlying pool statistics.
func (r *Runner) Stats() PoolStats {
	return r.pool.Stats()
}

// Run analyzes every job and returns results in input order. If ctx is
// cancelled before all jobs are queued, the unqueued jobs carry ctx's error
// and that error is also returned.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	var wg sync.WaitGroup

	for i := range jobs {
		i := i
		wg.Add(1)
		err := r.pool.Submit(ctx, func() {
			defer wg.Done()
			results[i] = r.analyze(ctx, jobs[i])
		})
		if err != nil {
			wg.Done()
			for j := i; j < len(jobs); j++ {
				results[j] = failed(jobs[j].Name, err, 0)
			}
			wg.Wait()
			r.logger.Warn().Err(err).Int("queued", i).Int("total", len(jobs)).Msg("Comparison interrupted")
			return results, err
		}
	}

	wg.Wait()
	return results, nil
}

func (r *Runner) analyze(ctx context.Context, job Job) Result {
	if err := ctx.Err(); err != nil {
		return failed(job.Name, err, 0)
	}

	start := time.Now()
	logger := logging.WithStrategy(logging.WithSymbol(logging.FromContext(ctx, r.logger), job.Symbol), job.Name)

	s, err := strategy.BuildByName(job.Name, job.Symbol, job.Context, job.Params)
	if err != nil {
		logger.Debug().Err(err).Msg("Strategy build failed")
		return failed(job.Name, err, time.Since(start))
	}
	a, err := analyzer.Analyze(s)
	if err != nil {
		logger.Debug().Err(err).Msg("Strategy analysis failed")
		return failed(job.Name, err, time.Since(start))
	}

	elapsed := time.Since(start)
	logging.LogAnalysis(logger, s, a, elapsed)
	return Result{Name: job.Name, Strategy: s, Analysis: a, Duration: elapsed}
}

func failed(name string, err error, d time.Duration) Result {
	return Result{Name: name, Err: err, Error: err.Error(), Duration: d}
}

// Jobs expands names into jobs sharing one context and parameter set. Each
// name uses the entries of params it understands.
func Jobs(names []string, symbol string, sctx models.StrategyContext, params strategy.Params) []Job {
	jobs := make([]Job, len(names))
	for i, name := range names {
		jobs[i] = Job{Name: name, Symbol: symbol, Context: sctx, Params: params}
	}
	return jobs
}

// Rank returns a copy of results ordered by probability of profit, highest
// first, then by max profit. Failed results go last in input order.
func Rank(results []Result) []Result {
	ranked := make([]Result, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.OK() != b.OK() {
			return a.OK()
		}
		if !a.OK() {
			return false
		}
		if a.Analysis.ProbabilityOfProfit != b.Analysis.ProbabilityOfProfit {
			return a.Analysis.ProbabilityOfProfit > b.Analysis.ProbabilityOfProfit
		}
		return a.Analysis.MaxProfit > b.Analysis.MaxProfit
	})
	return ranked
}

// Package worker runs independent recipes in parallel.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/recipe"
)

// Runner executes one task and reports statistics of the raster it built.
// Implementations must not share rasters or sessions between calls.
type Runner interface {
	Run(ctx context.Context, task Task) (hfield.Stats, error)
}

// Task is one recipe run with its own seed.
type Task struct {
	Name  string
	Steps []recipe.Step
	Seed  int64
}

// Result is the outcome of a task.
type Result struct {
	Task    Task
	Err     error
	Stats   hfield.Stats
	Elapsed time.Duration
}

// ProgressFunc receives running totals after each task.
type ProgressFunc func(completed, total, failed int)

// Config configures a Pool.
type Config struct {
	Runner     Runner
	OnProgress ProgressFunc
	Workers    int
}

// Pool runs tasks on a fixed number of goroutines. OnProgress is always
// called from the goroutine that called Run.
type Pool struct {
	runner     Runner
	onProgress ProgressFunc
	workers    int
}

// New creates a pool; fewer than one worker means one.
func New(cfg Config) *Pool {
	return &Pool{
		workers:    max(cfg.Workers, 1),
		runner:     cfg.Runner,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns one result per task, in task order.
// It blocks until every task has finished; tasks still queued when ctx is
// cancelled report ctx.Err() without running.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	results := make([]Result, len(tasks))
	queue := make(chan int, len(tasks))
	for i := range tasks {
		queue <- i
	}
	close(queue)

	finished := make(chan int)
	var wg sync.WaitGroup
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				results[i] = p.run(ctx, tasks[i])
				finished <- i
			}
		}()
	}
	go func() {
		wg.Wait()
		close(finished)
	}()

	completed, failed := 0, 0
	for i := range finished {
		completed++
		if results[i].Err != nil {
			failed++
		}
		if p.onProgress != nil {
			p.onProgress(completed, len(tasks), failed)
		}
	}
	return results
}

func (p *Pool) run(ctx context.Context, task Task) Result {
	if err := ctx.Err(); err != nil {
		return Result{Task: task, Err: err}
	}
	start := time.Now()
	stats, err := p.runner.Run(ctx, task)
	return Result{Task: task, Stats: stats, Err: err, Elapsed: time.Since(start)}
}

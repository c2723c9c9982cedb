package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/recipe"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// Sink receives finished rasters. It must be safe for concurrent use.
type Sink interface {
	Put(name string, f *hfield.Field) error
}

// RecipeRunner runs each task's recipe in a fresh deterministic session
// seeded with the task seed, hands the result to Sink and releases it.
type RecipeRunner struct {
	Sink   Sink
	Logger *slog.Logger
	Config session.Config
}

// Run implements Runner.
func (r *RecipeRunner) Run(ctx context.Context, task Task) (hfield.Stats, error) {
	cfg := r.Config
	cfg.Seed = task.Seed
	cfg.SeedStale = false
	cfg.Deterministic = true

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("task", task.Name, "seed", task.Seed)
	sess := session.New(cfg).WithLogger(logger)

	f, err := recipe.Run(ctx, sess, task.Steps, logger)
	if err != nil {
		return hfield.Stats{}, fmt.Errorf("task %s: %w", task.Name, err)
	}
	defer f.Release()

	stats := f.Describe()
	if r.Sink != nil {
		if err := r.Sink.Put(task.Name, f); err != nil {
			return stats, fmt.Errorf("task %s: failed to store result: %w", task.Name, err)
		}
	}
	logger.Debug("Task finished", "width", stats.Width, "height", stats.Height, "min", stats.Min, "max", stats.Max)
	return stats, nil
}

// SeedTasks builds count tasks running steps with consecutive seeds starting
// at first. Task names are prefix-<seed>.
func SeedTasks(prefix string, steps []recipe.Step, first int64, count int) []Task {
	tasks := make([]Task, count)
	for i := range tasks {
		seed := first + int64(i)
		tasks[i] = Task{Name: fmt.Sprintf("%s-%d", prefix, seed), Seed: seed, Steps: steps}
	}
	return tasks
}

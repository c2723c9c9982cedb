package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/hflab/internal/recipe"
	"github.com/MeKo-Tech/hflab/internal/session"
	"github.com/MeKo-Tech/hflab/internal/worker"
)

var batchCmd = &cobra.Command{
	Use:   "batch PREFIX",
	Short: "Run the configured recipe for a range of seeds",
	Long: `Run the recipe configured under recipe.steps once per seed, in parallel, and
store every result as PREFIX-<seed>.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("count", 8, "Number of rasters to build")
	batchCmd.Flags().Int64("first-seed", 1, "Seed of the first raster")
	batchCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Bool("progress", true, "Show progress bar")
	batchCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some rasters fail")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"batch.count", "count"},
		{"batch.first_seed", "first-seed"},
		{"batch.workers", "workers"},
		{"batch.progress", "progress"},
		{"batch.allow_failures", "allow-failures"},
	}
	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, batchCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	count := viper.GetInt("batch.count")
	firstSeed := viper.GetInt64("batch.first_seed")
	workers := viper.GetInt("batch.workers")
	showProgress := viper.GetBool("batch.progress")
	allowFailures := viper.GetBool("batch.allow_failures")

	if logger == nil {
		initLogging()
	}
	if count <= 0 {
		return fmt.Errorf("--count must be positive, got %d", count)
	}
	if firstSeed == 0 {
		return fmt.Errorf("--first-seed must not be 0")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	cfg, err := session.FromViper(viper.GetViper())
	if err != nil {
		return fmt.Errorf("invalid session settings: %w", err)
	}
	steps, err := recipe.Load(viper.GetViper(), "recipe.steps")
	if err != nil {
		return err
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signalContext()
	defer cancel()

	tasks := worker.SeedTasks(args[0], steps, firstSeed, count)
	progress := worker.NewProgress(len(tasks), showProgress)
	pool := worker.New(worker.Config{
		Workers:    workers,
		Runner:     &worker.RecipeRunner{Sink: db, Logger: logger, Config: cfg},
		OnProgress: progress.Callback(),
	})

	logger.Info("Starting batch", "prefix", args[0], "count", count, "first_seed", firstSeed, "workers", workers)
	results := pool.Run(ctx, tasks)
	progress.Done()
	if err := db.Flush(); err != nil {
		return err
	}

	var failedCount int
	for _, r := range results {
		if r.Err != nil {
			failedCount++
			logger.Error("Raster failed", "name", r.Task.Name, "seed", r.Task.Seed, "error", r.Err)
		}
	}
	logger.Info(progress.Summary())

	if failedCount > 0 {
		if !allowFailures {
			return fmt.Errorf("%d of %d rasters failed", failedCount, len(tasks))
		}
		logger.Warn("Some rasters failed, continuing due to --allow-failures", "failed_count", failedCount)
	}
	return nil
}

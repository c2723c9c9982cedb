package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/hflab/internal/recipe"
)

var runCmd = &cobra.Command{
	Use:   "run NAME",
	Short: "Run the configured recipe",
	Long: `Run the step list configured under recipe.steps and store the result as NAME.

Example config.yaml:

  recipe:
    steps:
      - op: forge
        args: [256, 2.1]
      - op: craters
        args: [30]
      - op: fill
        args: [50]`,
	Args: cobra.ExactArgs(1),
	RunE: runRecipe,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("key", "recipe.steps", "Config key holding the step list")
	if err := viper.BindPFlag("recipe.key", runCmd.Flags().Lookup("key")); err != nil {
		panic(fmt.Sprintf("failed to bind flag key: %v", err))
	}
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func runRecipe(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	key := viper.GetString("recipe.key")
	steps, err := recipe.Load(viper.GetViper(), key)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("Running recipe", "name", args[0], "steps", len(steps))
	f, err := recipe.Run(ctx, sess, steps, logger)
	if err != nil {
		return err
	}
	defer f.Release()

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Put(args[0], f); err != nil {
		return err
	}
	if err := db.Flush(); err != nil {
		return err
	}
	logger.Info("Raster stored", "name", args[0], "width", f.Width, "height", f.Height)
	return nil
}

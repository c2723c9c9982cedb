package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/hflab/internal/session"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hflab",
	Short: "A heightfield generator and editor",
	Long: `hflab synthesizes, transforms and analyses 2-D heightfields.

Rasters are kept by name in a SQLite database. Fractal terrain comes from
spectral synthesis; erosion, craters, filters and geometric edits transform it,
and export renders grayscale or shaded-relief PNG previews.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	pf.String("db", "hflab.db", "Raster database file")
	pf.Bool("verbose", false, "Enable verbose logging")

	pf.Int64("seed", 0, "Random seed (0 derives a new seed from the clock for every operation)")
	pf.String("tile-mode", "auto", "Edge handling: auto, on (always wrap) or off (always clamp)")
	pf.Float64("tile-tol", 0.01, "Relative edge mismatch still treated as tilable")
	pf.Int("hist-bins", 1000, "Histogram bins used by equalize and peak shift")
	pf.Bool("uniform", false, "Use uniform instead of Gaussian random fills")

	session.SetDefaults(viper.GetViper())

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"db", "db"},
		{"verbose", "verbose"},
		{"session.seed", "seed"},
		{"session.tile_mode", "tile-mode"},
		{"session.tile_tol", "tile-tol"},
		{"session.hist_bins", "hist-bins"},
		{"session.uniform", "uniform"},
	}
	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, pf.Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("HFLAB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func initLogging() {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// newSession builds an engine session from the bound session flags.
func newSession() (*session.Session, error) {
	if logger == nil {
		initLogging()
	}
	cfg, err := session.FromViper(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid session settings: %w", err)
	}
	return session.New(cfg).WithLogger(logger), nil
}

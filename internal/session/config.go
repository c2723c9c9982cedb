// Package session holds the explicit engine configuration and the random
// generator shared by every stochastic or tiling-sensitive operation.
package session

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// TileMode controls how the engine decides whether a raster wraps.
type TileMode int

const (
	// TileAuto measures seam continuity on every call.
	TileAuto TileMode = iota
	// TileOn forces toroidal addressing.
	TileOn
	// TileOff forces edge clamping.
	TileOff
)

func (m TileMode) String() string {
	switch m {
	case TileOn:
		return "on"
	case TileOff:
		return "off"
	default:
		return "auto"
	}
}

// ParseTileMode accepts "auto", "on" or "off".
func ParseTileMode(s string) (TileMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return TileAuto, nil
	case "on":
		return TileOn, nil
	case "off":
		return TileOff, nil
	default:
		return TileAuto, fmt.Errorf("invalid tile mode %q: must be auto, on or off", s)
	}
}

// Distribution selects the per-cell sampler used by random fills.
type Distribution int

const (
	// Gaussian uses the mean of four uniform samples.
	Gaussian Distribution = iota
	// Uniform uses a single uniform sample.
	Uniform
)

func (d Distribution) String() string {
	if d == Uniform {
		return "uniform"
	}
	return "gaussian"
}

// Config is the session configuration. Changing it never affects rasters that
// already exist.
type Config struct {
	Distribution  Distribution
	Seed          int64
	SeedStale     bool // derive a time-based seed on the next reseed
	Deterministic bool // seed once, then keep drawing from the same stream
	HistBins      int
	TileMode      TileMode
	TileTolerance float64
	GaussExtent   float64 // sigmas covered by hills and rings on tiling rasters
}

// DefaultConfig returns the stock engine settings.
func DefaultConfig() Config {
	return Config{
		Distribution:  Gaussian,
		Seed:          0,
		SeedStale:     true,
		HistBins:      1000,
		TileMode:      TileAuto,
		TileTolerance: 0.01,
		GaussExtent:   4.0,
	}
}

// Validate checks the configuration for values the engine cannot use.
func (c Config) Validate() error {
	if c.HistBins <= 0 {
		return fmt.Errorf("hist bins must be positive, got %d", c.HistBins)
	}
	if c.TileTolerance < 0 {
		return fmt.Errorf("tile tolerance must not be negative, got %g", c.TileTolerance)
	}
	if c.GaussExtent <= 0 {
		return fmt.Errorf("gauss extent must be positive, got %g", c.GaussExtent)
	}
	return nil
}

// SetDefaults registers the session defaults on v under the "session." prefix.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("session.uniform", d.Distribution == Uniform)
	v.SetDefault("session.seed", d.Seed)
	v.SetDefault("session.hist_bins", d.HistBins)
	v.SetDefault("session.tile_mode", d.TileMode.String())
	v.SetDefault("session.tile_tol", d.TileTolerance)
	v.SetDefault("session.gauss_extent", d.GaussExtent)
}

// FromViper builds a Config from the "session." keys of v. A non-zero seed is
// treated as an explicit, deterministic seed.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()

	if v.GetBool("session.uniform") {
		cfg.Distribution = Uniform
	}
	if v.IsSet("session.hist_bins") {
		cfg.HistBins = v.GetInt("session.hist_bins")
	}
	if v.IsSet("session.tile_tol") {
		cfg.TileTolerance = v.GetFloat64("session.tile_tol")
	}
	if v.IsSet("session.gauss_extent") {
		cfg.GaussExtent = v.GetFloat64("session.gauss_extent")
	}

	mode, err := ParseTileMode(v.GetString("session.tile_mode"))
	if err != nil {
		return cfg, err
	}
	cfg.TileMode = mode

	if seed := v.GetInt64("session.seed"); seed != 0 {
		cfg.Seed = seed
		cfg.SeedStale = false
		cfg.Deterministic = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

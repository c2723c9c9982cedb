// Package recipe runs declarative lists of heightfield operations.
package recipe

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/MeKo-Tech/hflab/internal/hfield"
)

// Step is one operation of a recipe. Mode selects a variant for steps that
// have one (the unary operator, filter type, composite operator, warp mode,
// slope measure). Name refers to a raster saved with a keep step.
type Step struct {
	Mode string
	Name string
	Args []float64
	Op   Kind
}

func (s Step) String() string {
	var b strings.Builder
	b.WriteString(s.Op.String())
	if s.Mode != "" {
		b.WriteString(":" + s.Mode)
	}
	if s.Name != "" {
		b.WriteString(" @" + s.Name)
	}
	if len(s.Args) > 0 {
		fmt.Fprintf(&b, " %v", s.Args)
	}
	return b.String()
}

// args validates the argument count and pads omitted trailing arguments with
// their defaults.
func (s Step) args() ([]float64, error) {
	info := kinds[s.Op]
	total := info.required + len(info.defaults)
	if len(s.Args) < info.required {
		return nil, fmt.Errorf("%s: need at least %d arguments, got %d: %w", s.Op, info.required, len(s.Args), hfield.ErrParam)
	}
	if len(s.Args) > total {
		return nil, fmt.Errorf("%s: takes at most %d arguments, got %d: %w", s.Op, total, len(s.Args), hfield.ErrParam)
	}
	out := make([]float64, total)
	copy(out, s.Args)
	for i := len(s.Args); i < total; i++ {
		out[i] = info.defaults[i-info.required]
	}
	return out, nil
}

// StepConfig is the configuration file form of a Step.
type StepConfig struct {
	Op   string    `mapstructure:"op"`
	Mode string    `mapstructure:"mode"`
	Name string    `mapstructure:"name"`
	Args []float64 `mapstructure:"args"`
}

// Parse converts a configured step into a Step.
func (c StepConfig) Parse() (Step, error) {
	k, err := ParseKind(c.Op)
	if err != nil {
		return Step{}, err
	}
	if k.needsName() && c.Name == "" {
		return Step{}, fmt.Errorf("%s: step needs a name", k)
	}
	return Step{Op: k, Mode: c.Mode, Name: c.Name, Args: c.Args}, nil
}

// Load reads the step list stored under key.
func Load(v *viper.Viper, key string) ([]Step, error) {
	var raw []StepConfig
	if err := v.UnmarshalKey(key, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no steps configured under %s", key)
	}
	steps := make([]Step, 0, len(raw))
	for i, c := range raw {
		s, err := c.Parse()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

package recipe

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

// seeded returns a session that keeps one random stream across steps.
func seeded(seed int64) *session.Session {
	cfg := session.DefaultConfig()
	cfg.Seed = seed
	cfg.SeedStale = false
	cfg.Deterministic = true
	return session.New(cfg)
}

func TestParseKindExact(t *testing.T) {
	k, err := ParseKind("forge")
	require.NoError(t, err)
	assert.Equal(t, Forge, k)

	k, err = ParseKind("CWarp")
	require.NoError(t, err)
	assert.Equal(t, ComplexWarp, k)

	for _, bad := range []string{"for", "forgery", "", "smoo"} {
		_, err := ParseKind(bad)
		assert.Error(t, err, bad)
	}
	assert.Len(t, Kinds(), int(ComplexWarp)+1)
}

func TestStepArgs(t *testing.T) {
	a, err := Step{Op: Normalize}.args()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, a)

	a, err = Step{Op: Craters, Args: []float64{5, 2}}.args()
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 2, 1, 2}, a)

	_, err = Step{Op: Clip, Args: []float64{1, 2}}.args()
	assert.ErrorIs(t, err, hfield.ErrParam)

	_, err = Step{Op: Negate, Args: []float64{1}}.args()
	assert.ErrorIs(t, err, hfield.ErrParam)
}

func TestRunPipeline(t *testing.T) {
	steps := []Step{
		{Op: Const, Args: []float64{16, 16, 1}},
		{Op: Hill, Args: []float64{0.5, 0.5, 0.2, 1}},
		{Op: Unary, Mode: "mul", Args: []float64{2}},
		{Op: Normalize, Args: []float64{0, 10}},
		{Op: Double},
	}
	sess := seeded(1)
	sess.SetTileMode(session.TileOn)
	out, err := Run(context.Background(), sess, steps, nil)
	require.NoError(t, err)
	assert.Equal(t, 32, out.Width)
	assert.Equal(t, 32, out.Height)
	assert.False(t, out.IsConstant())
}

func TestRunSeamlessDistance(t *testing.T) {
	steps := []Step{
		{Op: Seamless, Args: []float64{24, 24}},
		{Op: Distance, Args: []float64{0.5}},
	}
	out, err := Run(context.Background(), seeded(3), steps, nil)
	require.NoError(t, err)
	assert.Equal(t, 24, out.Width)
	assert.Equal(t, float32(0), out.Min)
	assert.Greater(t, out.Max, float32(0))
}

func TestRunReproducible(t *testing.T) {
	steps := []Step{
		{Op: Forge, Args: []float64{32, 2.2}},
		{Op: Craters, Args: []float64{4}},
		{Op: Fill, Args: []float64{3}},
	}
	a, err := Run(context.Background(), seeded(42), steps, nil)
	require.NoError(t, err)
	b, err := Run(context.Background(), seeded(42), steps, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Re, b.Re)
}

func TestRunNamedRasters(t *testing.T) {
	steps := []Step{
		{Op: Const, Args: []float64{4, 4, 2}},
		{Op: Keep, Name: "base"},
		{Op: Unary, Mode: "add", Args: []float64{1}},
		{Op: Composite, Name: "base", Mode: "mul"},
		{Op: Join, Name: "base"},
	}
	out, err := Run(context.Background(), seeded(1), steps, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, out.Width)
	assert.Equal(t, 6.0, out.At(0, 0))
	assert.Equal(t, 2.0, out.At(7, 3))

	pair := []Step{
		{Op: Const, Args: []float64{2, 2, 1}},
		{Op: Keep, Name: "im"},
		{Op: Pair, Name: "im"},
		{Op: Magnitude},
	}
	out, err = Run(context.Background(), seeded(1), pair, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.4142135, out.At(1, 1), 1e-6)
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Run(ctx, seeded(1), []Step{{Op: Negate}}, nil)
	assert.ErrorIs(t, err, ErrNoRaster)

	_, err = Run(ctx, seeded(1), nil, nil)
	assert.ErrorIs(t, err, ErrNoRaster)

	_, err = Run(ctx, seeded(1), []Step{
		{Op: Const, Args: []float64{4, 4, 0}},
		{Op: Composite, Name: "missing"},
	}, nil)
	assert.ErrorContains(t, err, "missing")

	_, err = Run(ctx, seeded(1), []Step{
		{Op: Const, Args: []float64{4, 4, 0}},
		{Op: Unary, Mode: "ad", Args: []float64{1}},
	}, nil)
	assert.Error(t, err)

	_, err = Run(ctx, seeded(1), []Step{
		{Op: Const, Args: []float64{4, 4, 0}},
		{Op: Craters, Args: []float64{1, 1, 1, 0.5}},
	}, nil)
	assert.ErrorIs(t, err, hfield.ErrParam)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, seeded(1), []Step{{Op: Const, Args: []float64{2, 2, 0}}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	cfg := `
recipe:
  steps:
    - op: forge
      args: [64, 2.1]
    - op: keep
      name: base
    - op: filter
      mode: lp
      args: [0.2]
    - op: composite
      name: base
      mode: max
`
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(cfg)))

	steps, err := Load(v, "recipe.steps")
	require.NoError(t, err)
	require.Len(t, steps, 4)
	assert.Equal(t, Forge, steps[0].Op)
	assert.Equal(t, []float64{64, 2.1}, steps[0].Args)
	assert.Equal(t, "base", steps[1].Name)
	assert.Equal(t, "lp", steps[2].Mode)
	assert.Equal(t, Composite, steps[3].Op)
}

func TestLoadErrors(t *testing.T) {
	v := viper.New()
	_, err := Load(v, "recipe.steps")
	assert.ErrorContains(t, err, "no steps")

	v.Set("recipe.steps", []map[string]any{{"op": "keep"}})
	_, err = Load(v, "recipe.steps")
	assert.ErrorContains(t, err, "needs a name")

	v.Set("recipe.steps", []map[string]any{{"op": "nope"}})
	_, err = Load(v, "recipe.steps")
	assert.True(t, strings.Contains(err.Error(), "step 1"))
}

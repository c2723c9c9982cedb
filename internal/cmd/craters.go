package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/hflab/internal/crater"
	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

var cratersCmd = &cobra.Command{
	Use:   "craters SOURCE [DEST]",
	Short: "Stamp impact craters",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runCraters,
}

func init() {
	rootCmd.AddCommand(cratersCmd)

	cratersCmd.Flags().IntP("count", "n", 20, "Number of craters")
	cratersCmd.Flags().Float64("height", 1, "Crater depth and rim height scale")
	cratersCmd.Flags().Float64("radius", 1, "Crater radius scale")
	cratersCmd.Flags().Float64("distribution", 2, "Size distribution factor (>= 1; larger favours small craters)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"craters.count", "count"},
		{"craters.height", "height"},
		{"craters.radius", "radius"},
		{"craters.distribution", "distribution"},
	}
	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, cratersCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runCraters(cmd *cobra.Command, args []string) error {
	p := crater.Params{
		Count:        viper.GetInt("craters.count"),
		HeightScale:  viper.GetFloat64("craters.height"),
		RadiusScale:  viper.GetFloat64("craters.radius"),
		Distribution: viper.GetFloat64("craters.distribution"),
	}

	return runEdit(args, "craters", func(sess *session.Session, f *hfield.Field) (*hfield.Field, error) {
		return crater.Stamp(sess, f, p)
	})
}

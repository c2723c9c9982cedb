package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
	"github.com/MeKo-Tech/hflab/internal/spectral"
)

var filterCmd = &cobra.Command{
	Use:   "filter SOURCE [DEST]",
	Short: "Apply a frequency-domain filter",
	Long: `Filter a real raster in the frequency domain. Types are lp (low pass), hp
(high pass), bp (band pass) and br (band reject). For lp and hp, --a1 is the
cutoff radius; for bp and br it is the band centre and --a2 the band width.
An --a1 of -1 and an --a2 of 0 select the type's defaults.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)

	filterCmd.Flags().StringP("type", "t", "lp", "Filter type: lp, hp, bp or br")
	filterCmd.Flags().Float64("a1", -1, "Cutoff or band centre")
	filterCmd.Flags().Float64("a2", 0, "Band width (bp and br only)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"filter.type", "type"},
		{"filter.a1", "a1"},
		{"filter.a2", "a2"},
	}
	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, filterCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runFilter(cmd *cobra.Command, args []string) error {
	kind, err := spectral.ParseFilterKind(viper.GetString("filter.type"))
	if err != nil {
		return err
	}
	a1 := viper.GetFloat64("filter.a1")
	a2 := viper.GetFloat64("filter.a2")

	return runEdit(args, "filter", func(_ *session.Session, f *hfield.Field) (*hfield.Field, error) {
		return spectral.FilterReal(f, a1, a2, kind)
	})
}

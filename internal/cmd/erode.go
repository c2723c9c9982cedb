package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/hflab/internal/erode"
	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

var erodeCmd = &cobra.Command{
	Use:   "erode SOURCE [DEST]",
	Short: "Fill basins and compute drainage",
	Long: `Raise closed depressions until water can drain from every cell. With --uphill
the stored result is the normalized square root of the uphill drainage area of
the filled terrain instead of the terrain itself.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runErode,
}

func init() {
	rootCmd.AddCommand(erodeCmd)

	erodeCmd.Flags().Int("iterations", 100, "Maximum number of fill double passes")
	erodeCmd.Flags().Bool("uphill", false, "Store the uphill drainage area instead of the filled terrain")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"erode.iterations", "iterations"},
		{"erode.uphill", "uphill"},
	}
	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, erodeCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runErode(cmd *cobra.Command, args []string) error {
	iterations := viper.GetInt("erode.iterations")
	uphill := viper.GetBool("erode.uphill")
	if iterations < 0 {
		return fmt.Errorf("--iterations must not be negative, got %d", iterations)
	}

	return runEdit(args, "erode", func(sess *session.Session, f *hfield.Field) (*hfield.Field, error) {
		filled, err := erode.FillBasins(sess, f, iterations)
		if err != nil || !uphill {
			return filled, err
		}
		return erode.UphillArea(sess, filled)
	})
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/hflab/internal/spectral"
)

var forgeCmd = &cobra.Command{
	Use:   "forge NAME",
	Short: "Synthesize fractal terrain",
	Long: `Synthesize a square fractal heightfield by shaping random noise with a 1/f
spectrum and transforming it back. Higher dimensions give rougher terrain.`,
	Args: cobra.ExactArgs(1),
	RunE: runForge,
}

func init() {
	rootCmd.AddCommand(forgeCmd)

	forgeCmd.Flags().Int("size", 256, "Edge length in cells")
	forgeCmd.Flags().Float64("dim", 2.15, "Fractal dimension, 0 to 4")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"forge.size", "size"},
		{"forge.dim", "dim"},
	}
	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, forgeCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runForge(cmd *cobra.Command, args []string) error {
	size := viper.GetInt("forge.size")
	dim := viper.GetFloat64("forge.dim")

	sess, err := newSession()
	if err != nil {
		return err
	}
	logger.Info("Forging terrain", "name", args[0], "size", size, "dim", dim)

	f, err := spectral.Forge(sess, size, dim)
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
	logger.Info("Raster stored", "name", args[0], "seed", sess.Seed())
	return nil
}

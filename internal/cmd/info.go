package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/hflab/internal/hfield"
	"github.com/MeKo-Tech/hflab/internal/session"
)

var infoCmd = &cobra.Command{
	Use:   "info NAME",
	Short: "Show statistics and edge tiling of a raster",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored rasters",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var rmCmd = &cobra.Command{
	Use:   "rm NAME...",
	Short: "Delete stored rasters",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(infoCmd, listCmd, rmCmd)
}

func writeInfo(out io.Writer, name string, f *hfield.Field, sess *session.Session) {
	st := f.Describe()
	rep := sess.TileReport(f)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "name\t%s\n", name)
	fmt.Fprintf(tw, "size\t%dx%d\n", st.Width, st.Height)
	fmt.Fprintf(tw, "complex\t%t\n", st.Complex)
	fmt.Fprintf(tw, "range\t[%g, %g]\n", st.Min, st.Max)
	fmt.Fprintf(tw, "mean\t%g\n", st.Mean)
	fmt.Fprintf(tw, "stddev\t%g\n", st.StdDev)
	fmt.Fprintf(tw, "seam difference\tx %.4g, y %.4g\n", rep.XDiff, rep.YDiff)
	fmt.Fprintf(tw, "tilable\t%t (mode %s)\n", sess.Tilable(f), sess.Config().TileMode)
	tw.Flush()
}

func runInfo(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	db, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := db.Get(args[0])
	if err != nil {
		return err
	}
	defer f.Release()

	writeInfo(cmd.OutOrStdout(), args[0], f, sess)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openStoreReadOnly()
	if err != nil {
		return err
	}
	defer db.Close()

	infos, err := db.List()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tCOMPLEX\tMIN\tMAX")
	for _, in := range infos {
		fmt.Fprintf(tw, "%s\t%dx%d\t%t\t%g\t%g\n", in.Name, in.Width, in.Height, in.Complex, in.Min, in.Max)
	}
	return tw.Flush()
}

func runRm(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}
	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, name := range args {
		if err := db.Delete(name); err != nil {
			return err
		}
		logger.Info("Raster deleted", "name", name)
	}
	return nil
}

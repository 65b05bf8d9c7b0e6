package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/camera-coverage/internal/export"
	"github.com/sells-group/camera-coverage/internal/spatial"
)

var (
	neighborsIsolated bool
	neighborsCSV      bool
)

var neighborsCmd = &cobra.Command{
	Use:   "neighbors",
	Short: "Compute nearest-neighbor distances",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := analysisParams(cmd)
		if err != nil {
			return err
		}
		_, pts, err := loadProjected(cmd.Context())
		if err != nil {
			return err
		}

		stats, err := spatial.NearestNeighbors(pts)
		if err != nil {
			return err
		}
		if neighborsIsolated {
			stats = spatial.Isolated(stats, p.Thresholds.IsolatedM)
		}
		if neighborsCSV {
			return export.WriteCSV(os.Stdout, stats)
		}

		formatNeighbors(os.Stdout, stats, spatial.Summarize(stats, p.Thresholds))
		return nil
	},
}

func init() {
	neighborsCmd.Flags().BoolVar(&neighborsIsolated, "isolated", false, "only list cameras beyond the isolation threshold")
	neighborsCmd.Flags().BoolVar(&neighborsCSV, "csv", false, "print distances as CSV")
	rootCmd.AddCommand(neighborsCmd)
}

// formatNeighbors writes a distance table and summary to out.
func formatNeighbors(out io.Writer, stats []spatial.NeighborStat, s spatial.NeighborSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CAMERA\tNEAREST\tDISTANCE_M")
	_, _ = fmt.Fprintln(w, "------\t-------\t----------")
	for _, st := range stats {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.1f\n", st.PointID, st.NearestID, st.DistanceM)
	}
	_ = w.Flush()

	if s.Count == 0 {
		return
	}
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "\nCameras:\t%d\n", s.Count)
	_, _ = fmt.Fprintf(w, "Mean:\t%.1f m\n", s.Mean)
	_, _ = fmt.Fprintf(w, "Median:\t%.1f m\n", s.Median)
	_, _ = fmt.Fprintf(w, "Std:\t%.1f m\n", s.Std)
	_, _ = fmt.Fprintf(w, "Range:\t%.1f - %.1f m\n", s.Min, s.Max)
	_, _ = fmt.Fprintf(w, "Isolated:\t%d\n", s.Isolated)
	_, _ = fmt.Fprintf(w, "Clustered:\t%d\n", s.Clustered)
	_ = w.Flush()
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/camera-coverage/internal/export"
	"github.com/sells-group/camera-coverage/internal/spatial"
)

var clustersCSV bool

var clustersCmd = &cobra.Command{
	Use:   "clusters",
	Short: "Group cameras by density-based clustering",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := analysisParams(cmd)
		if err != nil {
			return err
		}
		_, pts, err := loadProjected(cmd.Context())
		if err != nil {
			return err
		}

		a, err := spatial.ClusterDetail(pts, p.EpsilonM, p.MinSamples)
		if err != nil {
			return err
		}
		if clustersCSV {
			return export.WriteCSV(os.Stdout, a)
		}
		formatClusters(os.Stdout, a)
		return nil
	},
}

func init() {
	clustersCmd.Flags().BoolVar(&clustersCSV, "csv", false, "print per-camera assignments as CSV")
	rootCmd.AddCommand(clustersCmd)
}

func formatClusters(out io.Writer, a []spatial.Assignment) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CLUSTER\tSIZE\tMEMBERS")
	_, _ = fmt.Fprintln(w, "-------\t----\t-------")
	for _, s := range spatial.Summaries(a) {
		members := ellipsize(strings.Join(s.Members, ", "), 60)
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\n", s.Label, s.Size, members)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\nNoise: %d of %d cameras\n", spatial.NoiseCount(a), len(a))
}

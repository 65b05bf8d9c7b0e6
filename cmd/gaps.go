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

var gapsGeoJSON bool

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Find uncovered regions inside the camera area of interest",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := analysisParams(cmd)
		if err != nil {
			return err
		}
		_, pts, err := loadProjected(cmd.Context())
		if err != nil {
			return err
		}

		region, err := spatial.Coverage(pts, p.RadiusM)
		if err != nil {
			return err
		}
		aoi, err := spatial.AreaOfInterest(pts, p.MarginM)
		if err != nil {
			return err
		}
		kept, small, err := spatial.PartitionGaps(region, aoi, p.MinGapAreaM2)
		if err != nil {
			return err
		}

		if gapsGeoJSON {
			fc, err := export.GapsGeoJSON(kept)
			if err != nil {
				return err
			}
			return export.WriteGeoJSON(os.Stdout, fc)
		}
		formatGaps(os.Stdout, kept, len(small), aoi.Area())
		return nil
	},
}

func init() {
	gapsCmd.Flags().BoolVar(&gapsGeoJSON, "geojson", false, "print gaps as GeoJSON")
	rootCmd.AddCommand(gapsCmd)
}

func formatGaps(out io.Writer, gaps []spatial.Gap, discarded int, aoiM2 float64) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "GAP\tAREA_M2\tAREA_KM2")
	_, _ = fmt.Fprintln(w, "---\t-------\t--------")
	for _, g := range gaps {
		_, _ = fmt.Fprintf(w, "%d\t%.0f\t%.3f\n", g.ID, g.AreaM2, g.AreaM2/1e6)
	}
	_ = w.Flush()

	total := spatial.TotalArea(gaps)
	_, _ = fmt.Fprintf(out, "\n%d gaps, %.0f m² uncovered", len(gaps), total)
	if aoiM2 > 0 {
		_, _ = fmt.Fprintf(out, " (%.1f%% of area of interest)", total/aoiM2*100)
	}
	_, _ = fmt.Fprintln(out)
	if discarded > 0 {
		_, _ = fmt.Fprintf(out, "%d smaller gaps below the minimum area were omitted\n", discarded)
	}
}

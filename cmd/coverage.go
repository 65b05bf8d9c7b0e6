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

var coverageGeoJSON bool

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Union camera buffers into a coverage region",
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
		if coverageGeoJSON {
			fc, err := export.CoverageGeoJSON(region)
			if err != nil {
				return err
			}
			return export.WriteGeoJSON(os.Stdout, fc)
		}

		formatCoverage(os.Stdout, region)
		return nil
	},
}

func init() {
	coverageCmd.Flags().BoolVar(&coverageGeoJSON, "geojson", false, "print the region as GeoJSON")
	rootCmd.AddCommand(coverageCmd)
}

func formatCoverage(out io.Writer, r *spatial.CoverageRegion) {
	theoretical := float64(r.Disks) * spatial.Disk(0, 0, r.RadiusM).Area()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Radius:\t%.1f m\n", r.RadiusM)
	_, _ = fmt.Fprintf(w, "Buffers:\t%d\n", r.Disks)
	_, _ = fmt.Fprintf(w, "Components:\t%d\n", r.Components())
	_, _ = fmt.Fprintf(w, "Covered area:\t%.0f m²\n", r.AreaM2)
	_, _ = fmt.Fprintf(w, "Theoretical area:\t%.0f m²\n", theoretical)
	if theoretical > 0 {
		_, _ = fmt.Fprintf(w, "Overlap:\t%.1f%%\n", (1-r.AreaM2/theoretical)*100)
	}
	_ = w.Flush()
}

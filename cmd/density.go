package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/camera-coverage/internal/spatial"
)

var densityJSON bool

var densityCmd = &cobra.Command{
	Use:   "density",
	Short: "Estimate camera density on a regular grid",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := analysisParams(cmd)
		if err != nil {
			return err
		}
		if p.DensityGrid == 0 {
			return eris.New("density grid is disabled (--density-grid 0)")
		}
		_, pts, err := loadProjected(cmd.Context())
		if err != nil {
			return err
		}

		g, err := spatial.Density(pts, p.DensityGrid)
		if err != nil {
			return err
		}
		if densityJSON {
			return json.NewEncoder(os.Stdout).Encode(g)
		}

		row, col := peak(g)
		lat, lon := g.LatLon(row, col)
		fmt.Printf("Grid: %d x %d\n", g.Size, g.Size)
		fmt.Printf("Bandwidth: %.1f m x %.1f m\n", g.Bandwidth[0], g.Bandwidth[1])
		fmt.Printf("Peak density: %.3g cameras/km² at %.5f, %.5f\n", g.Max*1e6, lat, lon)
		return nil
	},
}

func init() {
	densityCmd.Flags().BoolVar(&densityJSON, "json", false, "print the full grid as JSON")
	rootCmd.AddCommand(densityCmd)
}

// peak returns the grid cell holding the maximum density.
func peak(g *spatial.DensityGrid) (row, col int) {
	best := -1.0
	for r, vals := range g.Values {
		for c, v := range vals {
			if v > best {
				best, row, col = v, r, c
			}
		}
	}
	return row, col
}

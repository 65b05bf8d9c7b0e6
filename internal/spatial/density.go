package spatial

import (
	"math"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distmv"
)

// DensityGrid is a Gaussian kernel density estimate sampled on a regular
// geographic grid. Values[row][col] is the density at (Lons[col],
// Lats[row]) in points per square meter. The kernel itself runs in
// planar meters.
type DensityGrid struct {
	Size      int         `json:"size"`
	Lons      []float64   `json:"lons"`
	Lats      []float64   `json:"lats"`
	Values    [][]float64 `json:"values"`
	Max       float64     `json:"max"`
	Bandwidth [2]float64  `json:"bandwidth_m"`
}

// Density estimates point density with Scott's rule bandwidth over a
// gridSize × gridSize lon/lat grid covering the point extent.
func Density(points []ProjectedPoint, gridSize int) (*DensityGrid, error) {
	if gridSize < 2 {
		return nil, eris.Wrapf(ErrInvalidParameter, "spatial: density grid size %d must be at least 2", gridSize)
	}
	n := len(points)
	if n < 3 {
		return nil, eris.Wrapf(ErrEmptyDataset, "spatial: density needs 3 points, got %d", n)
	}

	data := mat.NewDense(n, 2, nil)
	for i, p := range points {
		data.Set(i, 0, p.X)
		data.Set(i, 1, p.Y)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)
	factor := math.Pow(float64(n), -1.0/6.0)
	cov.ScaleSym(factor*factor, &cov)

	kernel, ok := distmv.NewNormal([]float64{0, 0}, &cov, nil)
	if !ok {
		return nil, eris.Wrap(ErrInvalidParameter, "spatial: density covariance is singular")
	}

	lats := make([]float64, n)
	lons := make([]float64, n)
	for i, p := range points {
		lat, lon, err := UnprojectPoint(p.X, p.Y)
		if err != nil {
			return nil, eris.Wrapf(err, "spatial: density point %s", p.ID)
		}
		lats[i], lons[i] = lat, lon
	}

	g := &DensityGrid{
		Size:      gridSize,
		Lons:      make([]float64, gridSize),
		Lats:      make([]float64, gridSize),
		Values:    make([][]float64, gridSize),
		Bandwidth: [2]float64{math.Sqrt(cov.At(0, 0)), math.Sqrt(cov.At(1, 1))},
	}
	floats.Span(g.Lons, floats.Min(lons), floats.Max(lons))
	floats.Span(g.Lats, floats.Min(lats), floats.Max(lats))

	delta := make([]float64, 2)
	for r, lat := range g.Lats {
		row := make([]float64, gridSize)
		for c, lon := range g.Lons {
			x, y, err := ProjectPoint(lat, lon)
			if err != nil {
				return nil, eris.Wrapf(err, "spatial: density node %d,%d", r, c)
			}
			var sum float64
			for _, p := range points {
				delta[0], delta[1] = x-p.X, y-p.Y
				sum += kernel.Prob(delta)
			}
			row[c] = sum / float64(n)
			g.Max = math.Max(g.Max, row[c])
		}
		g.Values[r] = row
	}
	return g, nil
}

// LatLon returns the geographic coordinate of grid cell (row, col).
func (g *DensityGrid) LatLon(row, col int) (lat, lon float64) {
	return g.Lats[row], g.Lons[col]
}

package spatial

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geos"

	"github.com/sells-group/camera-coverage/internal/model"
)

// DefaultMarginM pads the point extent when building the area of interest
// (500 ft).
const DefaultMarginM = 152.4

// Gap is one connected uncovered region of the area of interest.
type Gap struct {
	ID       int           `json:"gap_id"`
	Geometry *geom.Polygon `json:"-"`
	AreaM2   float64       `json:"area_m2"`
}

// AreaOfInterest returns the rectangle spanning all points, expanded by
// marginM on every side.
func AreaOfInterest(points []ProjectedPoint, marginM float64) (*geom.Polygon, error) {
	if marginM < 0 || math.IsNaN(marginM) {
		return nil, eris.Wrapf(ErrInvalidParameter, "spatial: margin %v must not be negative", marginM)
	}
	if len(points) == 0 {
		return nil, eris.Wrap(ErrEmptyDataset, "spatial: area of interest needs at least 1 point")
	}
	b := geom.NewBounds(geom.XY)
	for _, p := range points {
		b.Extend(geom.NewPointFlat(geom.XY, []float64{p.X, p.Y}))
	}
	return rect(b.Min(0)-marginM, b.Min(1)-marginM, b.Max(0)+marginM, b.Max(1)+marginM), nil
}

// AreaFromBounds projects a geographic box to a planar quadrilateral.
func AreaFromBounds(bb model.BBox) (*geom.Polygon, error) {
	corners := [][2]float64{
		{bb.MinLat, bb.MinLon},
		{bb.MinLat, bb.MaxLon},
		{bb.MaxLat, bb.MaxLon},
		{bb.MaxLat, bb.MinLon},
	}
	flat := make([]float64, 0, 10)
	for _, c := range corners {
		x, y, err := ProjectPoint(c[0], c[1])
		if err != nil {
			return nil, eris.Wrap(err, "spatial: area from bounds")
		}
		flat = append(flat, x, y)
	}
	flat = append(flat, flat[0], flat[1])
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)}), nil
}

func rect(minX, minY, maxX, maxY float64) *geom.Polygon {
	flat := []float64{minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY}
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}

// FindGaps returns the uncovered components of area with at least
// minAreaM2 square meters.
func FindGaps(region *CoverageRegion, area *geom.Polygon, minAreaM2 float64) ([]Gap, error) {
	kept, _, err := PartitionGaps(region, area, minAreaM2)
	return kept, err
}

// PartitionGaps computes area minus region, splits the remainder into
// connected polygons and separates them by minAreaM2. Kept gaps are ordered
// by descending area, then by their lower-left corner, and numbered from 1.
// Discarded gaps carry ID 0.
func PartitionGaps(region *CoverageRegion, area *geom.Polygon, minAreaM2 float64) (kept, discarded []Gap, err error) {
	if minAreaM2 < 0 || math.IsNaN(minAreaM2) {
		return nil, nil, eris.Wrapf(ErrInvalidParameter, "spatial: minimum gap area %v must not be negative", minAreaM2)
	}
	if area == nil {
		return nil, nil, eris.Wrap(ErrInvalidParameter, "spatial: area of interest is required")
	}

	gctx := geos.NewContext()
	aoi, err := toGEOS(gctx, area)
	if err != nil {
		return nil, nil, err
	}

	diff := aoi
	if region != nil && region.Geometry != nil && !region.Geometry.Empty() {
		cov, err := toGEOS(gctx, region.Geometry)
		if err != nil {
			return nil, nil, err
		}
		diff = aoi.Difference(cov)
	}

	polys, err := polygonsFromGEOS(diff)
	if err != nil {
		return nil, nil, eris.Wrap(err, "spatial: gap difference")
	}

	gaps := make([]Gap, 0, len(polys))
	for _, p := range polys {
		pg, err := toGEOS(gctx, p)
		if err != nil {
			return nil, nil, err
		}
		gaps = append(gaps, Gap{Geometry: p, AreaM2: pg.Area()})
	}
	sortGaps(gaps)

	for _, g := range gaps {
		if g.AreaM2 >= minAreaM2 {
			g.ID = len(kept) + 1
			kept = append(kept, g)
		} else {
			discarded = append(discarded, g)
		}
	}
	return kept, discarded, nil
}

func sortGaps(gaps []Gap) {
	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].AreaM2 != gaps[j].AreaM2 {
			return gaps[i].AreaM2 > gaps[j].AreaM2
		}
		bi, bj := gaps[i].Geometry.Bounds(), gaps[j].Geometry.Bounds()
		if bi.Min(0) != bj.Min(0) {
			return bi.Min(0) < bj.Min(0)
		}
		return bi.Min(1) < bj.Min(1)
	})
}

// TotalArea sums the area of gaps.
func TotalArea(gaps []Gap) float64 {
	var total float64
	for _, g := range gaps {
		total += g.AreaM2
	}
	return total
}

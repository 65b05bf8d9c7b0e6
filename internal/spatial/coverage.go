package spatial

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geos"
)

// DiskSegments is the vertex count of the regular polygon that stands in for
// each coverage disk. At 64 vertices the polygon area is within 0.17% of the
// true circle.
const DiskSegments = 64

// CoverageRegion is the union of all per-point disks.
type CoverageRegion struct {
	Geometry *geom.MultiPolygon `json:"-"`
	AreaM2   float64            `json:"area_m2"`
	RadiusM  float64            `json:"radius_m"`
	Disks    int                `json:"disks"`
}

// Disk returns a counter-clockwise regular polygon of DiskSegments vertices
// inscribed in the circle of radius r around (x, y).
func Disk(x, y, r float64) *geom.Polygon {
	flat := make([]float64, 0, (DiskSegments+1)*2)
	for i := 0; i < DiskSegments; i++ {
		theta := 2 * math.Pi * float64(i) / DiskSegments
		flat = append(flat, x+r*math.Cos(theta), y+r*math.Sin(theta))
	}
	flat = append(flat, flat[0], flat[1])
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}

// Coverage builds a disk of radiusM around every point and unions them.
// The result does not depend on point order or duplicates.
func Coverage(points []ProjectedPoint, radiusM float64) (*CoverageRegion, error) {
	if !(radiusM > 0) || math.IsInf(radiusM, 0) {
		return nil, eris.Wrapf(ErrInvalidParameter, "spatial: coverage radius %v must be positive", radiusM)
	}
	if len(points) == 0 {
		return nil, eris.Wrap(ErrEmptyDataset, "spatial: coverage needs at least 1 point")
	}

	gctx := geos.NewContext()
	disks := make([]*geos.Geom, 0, len(points))
	for _, p := range points {
		g, err := toGEOS(gctx, Disk(p.X, p.Y, radiusM))
		if err != nil {
			return nil, eris.Wrapf(err, "spatial: disk for %s", p.ID)
		}
		disks = append(disks, g)
	}

	union := gctx.NewCollection(geos.TypeIDGeometryCollection, disks).UnaryUnion()
	polys, err := polygonsFromGEOS(union)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: coverage union")
	}
	mp, err := multiPolygon(polys)
	if err != nil {
		return nil, err
	}

	return &CoverageRegion{
		Geometry: mp,
		AreaM2:   union.Area(),
		RadiusM:  radiusM,
		Disks:    len(points),
	}, nil
}

// Components returns the number of disjoint coverage patches.
func (r *CoverageRegion) Components() int {
	if r == nil || r.Geometry == nil {
		return 0
	}
	return r.Geometry.NumPolygons()
}

package spatial

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geos"
)

func TestDisk(t *testing.T) {
	t.Parallel()

	d := Disk(100, 200, 50)
	flat := d.FlatCoords()
	require.Len(t, flat, (DiskSegments+1)*2)
	assert.Equal(t, flat[:2], flat[len(flat)-2:])
	assert.GreaterOrEqual(t, DiskSegments, 32)

	ideal := math.Pi * 50 * 50
	assert.InEpsilon(t, ideal, d.Area(), 0.01)
}

func TestCoverage_SinglePoint(t *testing.T) {
	t.Parallel()

	region, err := Coverage([]ProjectedPoint{pt("a", 583000, 4507000)}, 50)
	require.NoError(t, err)

	assert.InEpsilon(t, math.Pi*50*50, region.AreaM2, 0.01)
	assert.Equal(t, 1, region.Components())
	assert.Equal(t, 1, region.Disks)
	assert.Equal(t, 50.0, region.RadiusM)
}

func TestCoverage_OverlapMerges(t *testing.T) {
	t.Parallel()

	pts := []ProjectedPoint{pt("a", 0, 0), pt("b", 60, 0), pt("c", 1000, 0)}
	region, err := Coverage(pts, 50)
	require.NoError(t, err)

	assert.Equal(t, 2, region.Components())
	single := Disk(0, 0, 50).Area()
	assert.Less(t, region.AreaM2, 3*single)
	assert.Greater(t, region.AreaM2, 2*single)
}

func TestCoverage_DuplicatesAndOrder(t *testing.T) {
	t.Parallel()

	pts := randomPoints(40, 3)
	base, err := Coverage(pts, 250)
	require.NoError(t, err)

	doubled := append(append([]ProjectedPoint{}, pts...), pts...)
	dup, err := Coverage(doubled, 250)
	require.NoError(t, err)

	reversed := make([]ProjectedPoint, len(pts))
	for i, p := range pts {
		reversed[len(pts)-1-i] = p
	}
	rev, err := Coverage(reversed, 250)
	require.NoError(t, err)

	for _, other := range []*CoverageRegion{dup, rev} {
		assert.InEpsilon(t, base.AreaM2, other.AreaM2, 1e-6)
		assert.Equal(t, base.Components(), other.Components())
		assert.Less(t, symDiffArea(t, base, other), base.AreaM2*1e-6)
	}
}

func TestCoverage_ReunionIsIdempotent(t *testing.T) {
	t.Parallel()

	region, err := Coverage(randomPoints(30, 11), 400)
	require.NoError(t, err)

	gctx := geos.NewContext()
	g, err := toGEOS(gctx, region.Geometry)
	require.NoError(t, err)
	assert.InEpsilon(t, region.AreaM2, g.UnaryUnion().Area(), 1e-9)
}

func TestCoverage_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, r := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, err := Coverage([]ProjectedPoint{pt("a", 0, 0)}, r)
		require.Error(t, err)
		assert.True(t, eris.Is(err, ErrInvalidParameter), "radius %v", r)
	}

	_, err := Coverage(nil, 50)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrEmptyDataset))
}

func symDiffArea(t *testing.T, a, b *CoverageRegion) float64 {
	t.Helper()
	gctx := geos.NewContext()
	ga, err := toGEOS(gctx, a.Geometry)
	require.NoError(t, err)
	gb, err := toGEOS(gctx, b.Geometry)
	require.NoError(t, err)
	return ga.SymDifference(gb).Area()
}

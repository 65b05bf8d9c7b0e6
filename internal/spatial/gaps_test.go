package spatial

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geos"

	"github.com/sells-group/camera-coverage/internal/model"
)

func TestAreaOfInterest(t *testing.T) {
	t.Parallel()

	aoi, err := AreaOfInterest([]ProjectedPoint{pt("a", 0, 0), pt("b", 1000, 500)}, 100)
	require.NoError(t, err)

	b := aoi.Bounds()
	assert.Equal(t, []float64{-100, -100}, []float64{b.Min(0), b.Min(1)})
	assert.Equal(t, []float64{1100, 600}, []float64{b.Max(0), b.Max(1)})
	assert.InDelta(t, 1200*700, aoi.Area(), 1e-6)
}

func TestAreaOfInterest_Invalid(t *testing.T) {
	t.Parallel()

	_, err := AreaOfInterest([]ProjectedPoint{pt("a", 0, 0)}, -1)
	assert.True(t, eris.Is(err, ErrInvalidParameter))

	_, err = AreaOfInterest(nil, 10)
	assert.True(t, eris.Is(err, ErrEmptyDataset))
}

func TestAreaFromBounds(t *testing.T) {
	t.Parallel()

	aoi, err := AreaFromBounds(model.NYCBounds)
	require.NoError(t, err)
	// Roughly 47 km by 49 km.
	assert.InDelta(t, 2.3e9, aoi.Area(), 0.2e9)
}

func TestPartitionGaps_AreaConservation(t *testing.T) {
	t.Parallel()

	for _, seed := range []int64{5, 17, 23} {
		pts := randomPoints(60, seed)
		region, err := Coverage(pts, 300)
		require.NoError(t, err)
		aoi, err := AreaOfInterest(pts, DefaultMarginM)
		require.NoError(t, err)

		kept, discarded, err := PartitionGaps(region, aoi, 5000)
		require.NoError(t, err)

		covered := coveredWithin(t, region, aoi)
		total := covered + TotalArea(kept) + TotalArea(discarded)
		assert.InEpsilon(t, aoi.Area(), total, 0.001, "seed %d", seed)
	}
}

func TestPartitionGaps_MinAreaFilter(t *testing.T) {
	t.Parallel()

	// Four disks on the corners of a square leave a small enclosed hole in
	// the middle and a large outer gap.
	pts := []ProjectedPoint{pt("a", 0, 0), pt("b", 90, 0), pt("c", 0, 90), pt("d", 90, 90)}
	region, err := Coverage(pts, 60)
	require.NoError(t, err)
	aoi, err := AreaOfInterest(pts, 200)
	require.NoError(t, err)

	all, err := FindGaps(region, aoi, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Greater(t, all[0].AreaM2, all[1].AreaM2)
	assert.Equal(t, 1, all[0].ID)
	assert.Equal(t, 2, all[1].ID)

	kept, discarded, err := PartitionGaps(region, aoi, all[1].AreaM2+1)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	require.Len(t, discarded, 1)
	assert.Equal(t, 0, discarded[0].ID)
	assert.InDelta(t, all[1].AreaM2, discarded[0].AreaM2, 1e-9)
}

func TestPartitionGaps_Disjoint(t *testing.T) {
	t.Parallel()

	pts := randomPoints(50, 8)
	region, err := Coverage(pts, 400)
	require.NoError(t, err)
	aoi, err := AreaOfInterest(pts, DefaultMarginM)
	require.NoError(t, err)

	gaps, err := FindGaps(region, aoi, 0)
	require.NoError(t, err)

	gctx := geos.NewContext()
	for i := range gaps {
		gi, err := toGEOS(gctx, gaps[i].Geometry)
		require.NoError(t, err)
		for j := i + 1; j < len(gaps); j++ {
			gj, err := toGEOS(gctx, gaps[j].Geometry)
			require.NoError(t, err)
			assert.InDelta(t, 0, gi.Intersection(gj).Area(), 1e-6)
		}
	}
}

func TestPartitionGaps_FullyCovered(t *testing.T) {
	t.Parallel()

	region, err := Coverage([]ProjectedPoint{pt("a", 0, 0)}, 500)
	require.NoError(t, err)

	gaps, err := FindGaps(region, rect(-10, -10, 10, 10), 0)
	require.NoError(t, err)
	assert.Empty(t, gaps)
}

func TestPartitionGaps_NoCoverage(t *testing.T) {
	t.Parallel()

	aoi := rect(0, 0, 100, 100)
	gaps, err := FindGaps(nil, aoi, 0)
	require.NoError(t, err)
	require.Len(t, gaps, 1)
	assert.InDelta(t, 10000, gaps[0].AreaM2, 1e-9)
}

func TestPartitionGaps_Invalid(t *testing.T) {
	t.Parallel()

	_, _, err := PartitionGaps(nil, rect(0, 0, 1, 1), -1)
	assert.True(t, eris.Is(err, ErrInvalidParameter))

	_, _, err = PartitionGaps(nil, nil, 0)
	assert.True(t, eris.Is(err, ErrInvalidParameter))
}

func coveredWithin(t *testing.T, region *CoverageRegion, aoi *geom.Polygon) float64 {
	t.Helper()
	gctx := geos.NewContext()
	r, err := toGEOS(gctx, region.Geometry)
	require.NoError(t, err)
	a, err := toGEOS(gctx, aoi)
	require.NoError(t, err)
	return r.Intersection(a).Area()
}

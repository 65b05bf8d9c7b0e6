package spatial

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/camera-coverage/internal/model"
)

// metersBetween approximates the ground distance between two nearby
// coordinates with an equirectangular projection.
func metersBetween(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000.0
	rad := math.Pi / 180
	x := (lon2 - lon1) * rad * math.Cos((lat1+lat2)/2*rad)
	y := (lat2 - lat1) * rad
	return math.Hypot(x, y) * earthRadius
}

func TestProjectPoint_RoundTrip(t *testing.T) {
	t.Parallel()

	b := model.NYCBounds
	for i := 0; i <= 10; i++ {
		for j := 0; j <= 10; j++ {
			lat := b.MinLat + (b.MaxLat-b.MinLat)*float64(i)/10
			lon := b.MinLon + (b.MaxLon-b.MinLon)*float64(j)/10

			x, y, err := ProjectPoint(lat, lon)
			require.NoError(t, err)

			gotLat, gotLon, err := UnprojectPoint(x, y)
			require.NoError(t, err)
			assert.Less(t, metersBetween(lat, lon, gotLat, gotLon), 1.0, "round trip at %.4f,%.4f", lat, lon)
		}
	}
}

func TestProjectPoint_Metric(t *testing.T) {
	t.Parallel()

	// 0.01 degrees of latitude is roughly 1110 m.
	_, y1, err := ProjectPoint(40.70, -74.00)
	require.NoError(t, err)
	_, y2, err := ProjectPoint(40.71, -74.00)
	require.NoError(t, err)
	assert.InDelta(t, 1110, y2-y1, 5)
}

func TestProjectPoint_OutOfBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"los angeles", 34.0522, -118.2437},
		{"south of box", 40.40, -74.00},
		{"east of box", 40.70, -73.60},
		{"swapped", -74.00, 40.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := ProjectPoint(tt.lat, tt.lon)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidCoordinate))
		})
	}
}

func TestProject_Dataset(t *testing.T) {
	t.Parallel()

	ds := model.NewDataset([]model.Camera{
		{ID: "CAM-001", Lat: 40.7580, Lon: -73.9855},
		{ID: "CAM-002", Lat: 40.6892, Lon: -74.0445},
	})
	pts, err := Project(ds)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, "CAM-001", pts[0].ID)
	assert.Greater(t, pts[0].X, pts[1].X)
	assert.Greater(t, pts[0].Y, pts[1].Y)
}

func TestProject_InvalidCamera(t *testing.T) {
	t.Parallel()

	ds := model.NewDataset([]model.Camera{
		{ID: "CAM-001", Lat: 40.7580, Lon: -73.9855},
		{ID: "CAM-BAD", Lat: 51.5, Lon: -0.12},
	})
	_, err := Project(ds)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidCoordinate))
	assert.Contains(t, err.Error(), "CAM-BAD")
}

func TestUnproject_Polygon(t *testing.T) {
	t.Parallel()

	x, y, err := ProjectPoint(40.75, -73.98)
	require.NoError(t, err)

	g, err := Unproject(Disk(x, y, 100))
	require.NoError(t, err)

	poly, ok := g.(*geom.Polygon)
	require.True(t, ok)
	assert.Equal(t, geom.XY, poly.Layout())
	assert.Len(t, poly.FlatCoords(), (DiskSegments+1)*2)

	b := poly.Bounds()
	assert.InDelta(t, -73.98, (b.Min(0)+b.Max(0))/2, 1e-4)
	assert.InDelta(t, 40.75, (b.Min(1)+b.Max(1))/2, 1e-4)
}

func TestUnproject_MultiPolygonAndPoint(t *testing.T) {
	t.Parallel()

	x, y, err := ProjectPoint(40.70, -74.00)
	require.NoError(t, err)

	mp, err := multiPolygon([]*geom.Polygon{Disk(x, y, 50), Disk(x+1000, y, 50)})
	require.NoError(t, err)

	g, err := Unproject(mp)
	require.NoError(t, err)
	out, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, out.NumPolygons())

	pt, err := Unproject(geom.NewPointFlat(geom.XY, []float64{x, y}))
	require.NoError(t, err)
	assert.InDelta(t, -74.00, pt.(*geom.Point).X(), 1e-6)
	assert.InDelta(t, 40.70, pt.(*geom.Point).Y(), 1e-6)
}

func TestUnproject_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := Unproject(geom.NewLineStringFlat(geom.XY, []float64{0, 0, 1, 1}))
	assert.Error(t, err)
}

package spatial

import (
	UTM "github.com/im7mortal/UTM"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/camera-coverage/internal/model"
)

// All planar math runs in UTM zone 18 north (EPSG:32618), which covers the
// whole NYC bounding box. Units are meters.
const (
	UTMZone       = 18
	utmZoneLetter = "T"
	EPSG          = 32618
)

// ProjectedPoint is a camera with its planar UTM coordinates.
type ProjectedPoint struct {
	model.Camera
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ProjectPoint converts a geographic coordinate to planar meters.
func ProjectPoint(lat, lon float64) (x, y float64, err error) {
	if err := model.CheckCoordinate(lat, lon); err != nil {
		return 0, 0, err
	}
	e, n, zone, _, err := UTM.FromLatLon(lat, lon, true)
	if err != nil {
		return 0, 0, eris.Wrapf(ErrInvalidCoordinate, "project %.6f,%.6f: %v", lat, lon, err)
	}
	if zone != UTMZone {
		return 0, 0, eris.Wrapf(ErrInvalidCoordinate, "project %.6f,%.6f: zone %d", lat, lon, zone)
	}
	return e, n, nil
}

// UnprojectPoint converts planar meters back to latitude/longitude.
func UnprojectPoint(x, y float64) (lat, lon float64, err error) {
	lat, lon, err = UTM.ToLatLon(x, y, UTMZone, utmZoneLetter)
	if err != nil {
		return 0, 0, eris.Wrapf(ErrInvalidCoordinate, "unproject %.1f,%.1f: %v", x, y, err)
	}
	return lat, lon, nil
}

// Project converts every camera in the dataset. It fails on the first
// camera outside the NYC bounds.
func Project(ds model.Dataset) ([]ProjectedPoint, error) {
	out := make([]ProjectedPoint, 0, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		c := ds.At(i)
		x, y, err := ProjectPoint(c.Lat, c.Lon)
		if err != nil {
			return nil, eris.Wrapf(err, "spatial: project camera %s", c.ID)
		}
		out = append(out, ProjectedPoint{Camera: c, X: x, Y: y})
	}
	return out, nil
}

// Unproject converts a planar Point, Polygon or MultiPolygon to a
// geographic geometry with X=longitude and Y=latitude.
func Unproject(g geom.T) (geom.T, error) {
	switch t := g.(type) {
	case *geom.Point:
		flat, err := unprojectFlat(t.FlatCoords(), t.Stride())
		if err != nil {
			return nil, err
		}
		return geom.NewPointFlat(geom.XY, flat), nil
	case *geom.Polygon:
		flat, err := unprojectFlat(t.FlatCoords(), t.Stride())
		if err != nil {
			return nil, err
		}
		return geom.NewPolygonFlat(geom.XY, flat, rescaleEnds(t.Ends(), t.Stride())), nil
	case *geom.MultiPolygon:
		flat, err := unprojectFlat(t.FlatCoords(), t.Stride())
		if err != nil {
			return nil, err
		}
		endss := make([][]int, 0, len(t.Endss()))
		for _, ends := range t.Endss() {
			endss = append(endss, rescaleEnds(ends, t.Stride()))
		}
		return geom.NewMultiPolygonFlat(geom.XY, flat, endss), nil
	default:
		return nil, eris.Errorf("spatial: unproject unsupported geometry %T", g)
	}
}

func unprojectFlat(flat []float64, stride int) ([]float64, error) {
	out := make([]float64, 0, len(flat)/stride*2)
	for i := 0; i+1 < len(flat); i += stride {
		lat, lon, err := UnprojectPoint(flat[i], flat[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, lon, lat)
	}
	return out, nil
}

// rescaleEnds maps ring end offsets from the source stride to XY.
func rescaleEnds(ends []int, stride int) []int {
	out := make([]int, len(ends))
	for i, e := range ends {
		out[i] = e / stride * 2
	}
	return out
}

package export

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/camera-coverage/internal/spatial"
)

// CamerasGeoJSON returns one Point feature per camera. Cluster and
// nearest-neighbor properties are added when those layers are present.
func CamerasGeoJSON(l *Layers) *geojson.FeatureCollection {
	labels := l.labels()
	nearest := l.nearest()

	fc := &geojson.FeatureCollection{}
	for _, c := range l.Cameras {
		props := map[string]any{
			"camera_id":         c.ID,
			"location_name":     c.Name,
			"status":            string(c.Status),
			"installation_date": c.InstalledOn.Format("2006-01-02"),
		}
		if labels != nil {
			props["cluster"] = labels[c.ID]
		}
		if st, ok := nearest[c.ID]; ok {
			props["nearest_neighbor"] = st.NearestID
			props["nearest_distance_m"] = st.DistanceM
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         c.ID,
			Geometry:   geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat}),
			Properties: props,
		})
	}
	return fc
}

// CoverageGeoJSON returns the coverage region as a single MultiPolygon
// feature.
func CoverageGeoJSON(r *spatial.CoverageRegion) (*geojson.FeatureCollection, error) {
	g, err := spatial.Unproject(r.Geometry)
	if err != nil {
		return nil, eris.Wrap(err, "export: unproject coverage")
	}
	return &geojson.FeatureCollection{Features: []*geojson.Feature{{
		ID:       "coverage",
		Geometry: g,
		Properties: map[string]any{
			"radius_m":   r.RadiusM,
			"area_m2":    r.AreaM2,
			"area_km2":   r.AreaM2 / 1e6,
			"disks":      r.Disks,
			"components": r.Components(),
		},
	}}}, nil
}

// GapsGeoJSON returns one Polygon feature per gap.
func GapsGeoJSON(gaps []spatial.Gap) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{}
	for _, gp := range gaps {
		g, err := spatial.Unproject(gp.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "export: unproject gap %d", gp.ID)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: g,
			Properties: map[string]any{
				"gap_id":   gp.ID,
				"area_m2":  gp.AreaM2,
				"area_km2": gp.AreaM2 / 1e6,
			},
		})
	}
	return fc, nil
}

// WriteGeoJSON encodes fc to w.
func WriteGeoJSON(w io.Writer, fc *geojson.FeatureCollection) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return eris.Wrap(err, "export: encode geojson")
	}
	return nil
}

func writeGeoJSONFiles(dir string, l *Layers) ([]string, error) {
	type layer struct {
		name string
		fc   func() (*geojson.FeatureCollection, error)
	}
	var layers []layer
	if len(l.Cameras) > 0 {
		layers = append(layers, layer{"cameras.geojson", func() (*geojson.FeatureCollection, error) { return CamerasGeoJSON(l), nil }})
	}
	if l.Coverage != nil {
		layers = append(layers, layer{"coverage.geojson", func() (*geojson.FeatureCollection, error) { return CoverageGeoJSON(l.Coverage) }})
	}
	if len(l.Gaps) > 0 {
		layers = append(layers, layer{"gaps.geojson", func() (*geojson.FeatureCollection, error) { return GapsGeoJSON(l.Gaps) }})
	}

	var out []string
	for _, ly := range layers {
		fc, err := ly.fc()
		if err != nil {
			return out, err
		}
		p := filepath.Join(dir, ly.name)
		if err := createWith(p, func(fh *os.File) error { return WriteGeoJSON(fh, fc) }); err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

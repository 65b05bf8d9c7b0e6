package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/camera-coverage/internal/spatial"
)

// wgs84PRJ is the .prj sidecar for geographic WGS84 coordinates.
const wgs84PRJ = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137.0,298.257223563]],PRIMEM["Greenwich",0.0],UNIT["Degree",0.0174532925199433]]`

// WriteCamerasShapefile writes cameras as a point shapefile at path
// (with .shp extension). Cluster is -1 for noise and when no clustering
// was run.
func WriteCamerasShapefile(path string, l *Layers) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.StringField("CAMERA_ID", 16),
		shp.StringField("NAME", 80),
		shp.StringField("STATUS", 12),
		shp.StringField("INSTALLED", 10),
		shp.NumberField("CLUSTER", 6),
		shp.FloatField("NN_DIST_M", 12, 2),
	})

	labels := l.labels()
	nearest := l.nearest()
	for _, c := range l.Cameras {
		n := int(w.Write(&shp.Point{X: c.Lon, Y: c.Lat}))
		cluster := spatial.Noise
		if lb, ok := labels[c.ID]; ok {
			cluster = lb
		}
		w.WriteAttribute(n, 0, c.ID)
		w.WriteAttribute(n, 1, c.Name)
		w.WriteAttribute(n, 2, string(c.Status))
		w.WriteAttribute(n, 3, c.InstalledOn.Format("2006-01-02"))
		w.WriteAttribute(n, 4, cluster)
		w.WriteAttribute(n, 5, nearest[c.ID].DistanceM)
	}
	return writePRJ(path)
}

// WriteGapsShapefile writes gaps as a polygon shapefile at path.
func WriteGapsShapefile(path string, gaps []spatial.Gap) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close()

	w.SetFields([]shp.Field{
		shp.NumberField("GAP_ID", 8),
		shp.FloatField("AREA_M2", 18, 2),
		shp.FloatField("AREA_KM2", 12, 6),
	})

	for _, gp := range gaps {
		g, err := spatial.Unproject(gp.Geometry)
		if err != nil {
			return eris.Wrapf(err, "export: unproject gap %d", gp.ID)
		}
		n := int(w.Write(shpPolygon(g.(*geom.Polygon))))
		w.WriteAttribute(n, 0, gp.ID)
		w.WriteAttribute(n, 1, gp.AreaM2)
		w.WriteAttribute(n, 2, gp.AreaM2/1e6)
	}
	return writePRJ(path)
}

// shpPolygon converts a polygon to shapefile parts. Shapefiles expect
// clockwise outer rings and counter-clockwise holes.
func shpPolygon(p *geom.Polygon) *shp.Polygon {
	parts := make([][]shp.Point, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		r := p.LinearRing(i)
		flat := r.FlatCoords()
		pts := make([]shp.Point, 0, len(flat)/2)
		for j := 0; j+1 < len(flat); j += r.Stride() {
			pts = append(pts, shp.Point{X: flat[j], Y: flat[j+1]})
		}
		outer := i == 0
		if clockwise(pts) != outer {
			reverse(pts)
		}
		parts = append(parts, pts)
	}
	poly := shp.Polygon(*shp.NewPolyLine(parts))
	return &poly
}

// clockwise uses the sign of the shoelace sum.
func clockwise(pts []shp.Point) bool {
	var sum float64
	for i := 0; i+1 < len(pts); i++ {
		sum += (pts[i+1].X - pts[i].X) * (pts[i+1].Y + pts[i].Y)
	}
	return sum > 0
}

func reverse(pts []shp.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

func writePRJ(shpPath string) error {
	prj := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj"
	if err := os.WriteFile(prj, []byte(wgs84PRJ), 0o644); err != nil {
		return eris.Wrapf(err, "export: write %s", prj)
	}
	return nil
}

func writeShapefiles(dir string, l *Layers) ([]string, error) {
	var out []string
	if len(l.Cameras) > 0 {
		p := filepath.Join(dir, "cameras.shp")
		if err := WriteCamerasShapefile(p, l); err != nil {
			return out, err
		}
		out = append(out, p)
	}
	if len(l.Gaps) > 0 {
		p := filepath.Join(dir, "gaps.shp")
		if err := WriteGapsShapefile(p, l.Gaps); err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

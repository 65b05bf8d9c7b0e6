package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-kml"

	"github.com/sells-group/camera-coverage/internal/model"
	"github.com/sells-group/camera-coverage/internal/spatial"
)

// statusColors are the placemark icon colors per status.
var statusColors = map[model.Status]color.RGBA{
	model.StatusActive:      {R: 0x00, G: 0xff, B: 0x00, A: 0xff},
	model.StatusMaintenance: {R: 0xff, G: 0xa5, B: 0x00, A: 0xff},
	model.StatusInactive:    {R: 0xff, G: 0x00, B: 0x00, A: 0xff},
}

var statusFolders = map[model.Status]string{
	model.StatusActive:      "Active Cameras",
	model.StatusMaintenance: "Maintenance",
	model.StatusInactive:    "Inactive Cameras",
}

// maxPlacemarkName bounds the location part of a placemark name.
const maxPlacemarkName = 30

func statusStyleID(s model.Status) string { return "status-" + string(s) }

// WriteKML writes a KML document with one folder of placemarks per status,
// followed by coverage and gap polygon folders when present.
func WriteKML(w io.Writer, l *Layers) error {
	doc := []kml.Element{
		kml.Name("NYC Camera Network"),
		kml.SharedStyle("coverage",
			kml.LineStyle(kml.Color(color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}), kml.Width(1)),
			kml.PolyStyle(kml.Color(color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0x60})),
		),
		kml.SharedStyle("gap",
			kml.LineStyle(kml.Color(color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}), kml.Width(1)),
			kml.PolyStyle(kml.Color(color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0x60})),
		),
	}
	for _, s := range model.Statuses {
		doc = append(doc, kml.SharedStyle(statusStyleID(s),
			kml.IconStyle(kml.Color(statusColors[s]), kml.Scale(1.2)),
			kml.LabelStyle(kml.Scale(0.8)),
		))
	}

	folders := map[model.Status][]kml.Element{}
	for _, c := range l.Cameras {
		folders[c.Status] = append(folders[c.Status], cameraPlacemark(c))
	}
	for _, s := range model.Statuses {
		if len(folders[s]) == 0 {
			continue
		}
		doc = append(doc, kml.Folder(append([]kml.Element{kml.Name(statusFolders[s])}, folders[s]...)...))
	}

	if l.Coverage != nil {
		g, err := spatial.Unproject(l.Coverage.Geometry)
		if err != nil {
			return eris.Wrap(err, "export: unproject coverage")
		}
		pm := []kml.Element{
			kml.Name(fmt.Sprintf("Coverage (%.0f m radius)", l.Coverage.RadiusM)),
			kml.Description(fmt.Sprintf("%.3f km² covered by %d cameras", l.Coverage.AreaM2/1e6, l.Coverage.Disks)),
			kml.StyleURL("#coverage"),
			kmlMultiGeometry(g.(*geom.MultiPolygon)),
		}
		doc = append(doc, kml.Folder(kml.Name("Coverage"), kml.Placemark(pm...)))
	}

	if len(l.Gaps) > 0 {
		gapFolder := []kml.Element{kml.Name("Coverage Gaps")}
		for _, gp := range l.Gaps {
			g, err := spatial.Unproject(gp.Geometry)
			if err != nil {
				return eris.Wrapf(err, "export: unproject gap %d", gp.ID)
			}
			gapFolder = append(gapFolder, kml.Placemark(
				kml.Name(fmt.Sprintf("Gap %d", gp.ID)),
				kml.Description(fmt.Sprintf("%.0f m²", gp.AreaM2)),
				kml.StyleURL("#gap"),
				kmlPolygon(g.(*geom.Polygon)),
			))
		}
		doc = append(doc, kml.Folder(gapFolder...))
	}

	if err := kml.KML(kml.Document(doc...)).WriteIndent(w, "", "  "); err != nil {
		return eris.Wrap(err, "export: write kml")
	}
	return nil
}

func cameraPlacemark(c model.Camera) kml.Element {
	name := []rune(c.Name)
	if len(name) > maxPlacemarkName {
		name = name[:maxPlacemarkName]
	}
	desc := fmt.Sprintf(
		"<h2>%s</h2><p><b>Location:</b> %s</p><p><b>Status:</b> %s</p><p><b>Installed:</b> %s</p><hr><p>Coordinates: %.4f°N, %.4f°W</p>",
		c.ID, c.Name, c.Status, c.InstalledOn.Format("2006-01-02"), c.Lat, math.Abs(c.Lon),
	)
	return kml.Placemark(
		kml.Name(c.ID+" - "+string(name)),
		kml.Description(desc),
		kml.StyleURL("#"+statusStyleID(c.Status)),
		kml.Point(kml.Coordinates(kml.Coordinate{Lon: c.Lon, Lat: c.Lat})),
	)
}

func kmlMultiGeometry(mp *geom.MultiPolygon) kml.Element {
	polys := make([]kml.Element, 0, mp.NumPolygons())
	for i := 0; i < mp.NumPolygons(); i++ {
		polys = append(polys, kmlPolygon(mp.Polygon(i)))
	}
	return kml.MultiGeometry(polys...)
}

func kmlPolygon(p *geom.Polygon) kml.Element {
	children := []kml.Element{kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(ringCoords(p.LinearRing(0))...)))}
	for i := 1; i < p.NumLinearRings(); i++ {
		children = append(children, kml.InnerBoundaryIs(kml.LinearRing(kml.Coordinates(ringCoords(p.LinearRing(i))...))))
	}
	return kml.Polygon(children...)
}

func ringCoords(r *geom.LinearRing) []kml.Coordinate {
	flat := r.FlatCoords()
	out := make([]kml.Coordinate, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += r.Stride() {
		out = append(out, kml.Coordinate{Lon: flat[i], Lat: flat[i+1]})
	}
	return out
}

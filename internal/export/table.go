package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// cameraRow is the flat per-camera table written to CSV and XLSX.
type cameraRow struct {
	CameraID        string  `csv:"camera_id"`
	LocationName    string  `csv:"location_name"`
	Latitude        float64 `csv:"latitude"`
	Longitude       float64 `csv:"longitude"`
	Status          string  `csv:"status"`
	InstalledOn     string  `csv:"installation_date"`
	Cluster         int     `csv:"cluster"`
	NearestNeighbor string  `csv:"nearest_neighbor"`
	NearestDistance float64 `csv:"nearest_distance_m"`
}

var cameraHeader = []string{
	"camera_id", "location_name", "latitude", "longitude", "status",
	"installation_date", "cluster", "nearest_neighbor", "nearest_distance_m",
}

func cameraRows(l *Layers) []cameraRow {
	labels := l.labels()
	nearest := l.nearest()
	rows := make([]cameraRow, 0, len(l.Cameras))
	for _, c := range l.Cameras {
		cluster, ok := labels[c.ID]
		if !ok {
			cluster = -1
		}
		st := nearest[c.ID]
		rows = append(rows, cameraRow{
			CameraID:        c.ID,
			LocationName:    c.Name,
			Latitude:        c.Lat,
			Longitude:       c.Lon,
			Status:          string(c.Status),
			InstalledOn:     c.InstalledOn.Format("2006-01-02"),
			Cluster:         cluster,
			NearestNeighbor: st.NearestID,
			NearestDistance: st.DistanceM,
		})
	}
	return rows
}

// WriteCSV marshals a slice of csv-tagged structs to w.
func WriteCSV(w io.Writer, rows any) error {
	b, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "export: marshal csv")
	}
	if _, err := w.Write(b); err != nil {
		return eris.Wrap(err, "export: write csv")
	}
	return nil
}

func writeCSVFiles(dir string, l *Layers) ([]string, error) {
	type table struct {
		name string
		rows any
		ok   bool
	}
	tables := []table{
		{"cameras.csv", cameraRows(l), len(l.Cameras) > 0},
		{"nearest_neighbors.csv", l.Neighbors, len(l.Neighbors) > 0},
		{"clusters.csv", l.Clusters, len(l.Clusters) > 0},
	}

	var out []string
	for _, t := range tables {
		if !t.ok {
			continue
		}
		p := filepath.Join(dir, t.name)
		if err := createWith(p, func(fh *os.File) error { return WriteCSV(fh, t.rows) }); err != nil {
			return out, err
		}
		out = append(out, p)
	}
	return out, nil
}

// WriteXLSX writes a workbook with Cameras, Neighbors, Clusters and Gaps
// sheets. Sheets for empty layers are omitted.
func WriteXLSX(w io.Writer, l *Layers) error {
	f := xlsx.NewFile()

	if len(l.Cameras) > 0 {
		sh, err := addSheet(f, "Cameras", cameraHeader)
		if err != nil {
			return err
		}
		for _, r := range cameraRows(l) {
			row := sh.AddRow()
			addString(row, r.CameraID)
			addString(row, r.LocationName)
			addFloat(row, r.Latitude)
			addFloat(row, r.Longitude)
			addString(row, r.Status)
			addString(row, r.InstalledOn)
			row.AddCell().SetInt(r.Cluster)
			addString(row, r.NearestNeighbor)
			addFloat(row, r.NearestDistance)
		}
	}

	if len(l.Neighbors) > 0 {
		sh, err := addSheet(f, "Neighbors", []string{"camera_id", "nearest_neighbor", "distance_m"})
		if err != nil {
			return err
		}
		for _, s := range l.Neighbors {
			row := sh.AddRow()
			addString(row, s.PointID)
			addString(row, s.NearestID)
			addFloat(row, s.DistanceM)
		}
	}

	if len(l.Clusters) > 0 {
		sh, err := addSheet(f, "Clusters", []string{"camera_id", "cluster", "role"})
		if err != nil {
			return err
		}
		for _, a := range l.Clusters {
			row := sh.AddRow()
			addString(row, a.PointID)
			row.AddCell().SetInt(a.Label)
			addString(row, string(a.Role))
		}
	}

	if len(l.Gaps) > 0 {
		sh, err := addSheet(f, "Gaps", []string{"gap_id", "area_m2", "area_km2"})
		if err != nil {
			return err
		}
		for _, g := range l.Gaps {
			row := sh.AddRow()
			row.AddCell().SetInt(g.ID)
			addFloat(row, g.AreaM2)
			addFloat(row, g.AreaM2/1e6)
		}
	}

	if len(f.Sheets) == 0 {
		return eris.New("export: nothing to write to xlsx")
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}

func addSheet(f *xlsx.File, name string, header []string) (*xlsx.Sheet, error) {
	sh, err := f.AddSheet(name)
	if err != nil {
		return nil, eris.Wrapf(err, "export: add sheet %s", name)
	}
	row := sh.AddRow()
	for _, h := range header {
		addString(row, h)
	}
	return sh, nil
}

func addString(row *xlsx.Row, s string) { row.AddCell().SetString(s) }

func addFloat(row *xlsx.Row, v float64) { row.AddCell().SetFloat(v) }

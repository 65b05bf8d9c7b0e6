// Package export writes analysis results to GIS and tabular formats:
// GeoJSON, KML, ESRI shapefile, CSV and XLSX. Planar geometries are
// converted back to WGS84 longitude/latitude before writing.
package export

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/camera-coverage/internal/model"
	"github.com/sells-group/camera-coverage/internal/spatial"
)

// Layers is everything an exporter can write. Nil or empty layers are
// skipped.
type Layers struct {
	Cameras   []model.Camera
	Neighbors []spatial.NeighborStat
	Clusters  []spatial.Assignment
	Coverage  *spatial.CoverageRegion
	Gaps      []spatial.Gap
}

func (l *Layers) labels() map[string]int {
	if len(l.Clusters) == 0 {
		return nil
	}
	m := make(map[string]int, len(l.Clusters))
	for _, a := range l.Clusters {
		m[a.PointID] = a.Label
	}
	return m
}

func (l *Layers) nearest() map[string]spatial.NeighborStat {
	if len(l.Neighbors) == 0 {
		return nil
	}
	m := make(map[string]spatial.NeighborStat, len(l.Neighbors))
	for _, s := range l.Neighbors {
		m[s.PointID] = s
	}
	return m
}

// Format names an output format.
type Format string

const (
	FormatGeoJSON   Format = "geojson"
	FormatKML       Format = "kml"
	FormatShapefile Format = "shapefile"
	FormatCSV       Format = "csv"
	FormatXLSX      Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatGeoJSON, FormatKML, FormatShapefile, FormatCSV, FormatXLSX}

// WriteAll writes the requested formats into dir and returns the files
// created, in order.
func WriteAll(dir string, l *Layers, formats []Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "export: create %s", dir)
	}

	var written []string
	for _, f := range formats {
		files, err := writeFormat(dir, l, f)
		if err != nil {
			return written, err
		}
		for _, p := range files {
			zap.L().Info("export: wrote file", zap.String("format", string(f)), zap.String("path", p))
		}
		written = append(written, files...)
	}
	return written, nil
}

func writeFormat(dir string, l *Layers, f Format) ([]string, error) {
	switch f {
	case FormatGeoJSON:
		return writeGeoJSONFiles(dir, l)
	case FormatKML:
		p := filepath.Join(dir, "cameras.kml")
		return []string{p}, createWith(p, func(fh *os.File) error { return WriteKML(fh, l) })
	case FormatShapefile:
		return writeShapefiles(dir, l)
	case FormatCSV:
		return writeCSVFiles(dir, l)
	case FormatXLSX:
		p := filepath.Join(dir, "analysis.xlsx")
		return []string{p}, createWith(p, func(fh *os.File) error { return WriteXLSX(fh, l) })
	default:
		return nil, eris.Errorf("export: unknown format %q", f)
	}
}

// ParseFormats validates format names.
func ParseFormats(names []string) ([]Format, error) {
	out := make([]Format, 0, len(names))
	for _, n := range names {
		ok := false
		for _, f := range Formats {
			if string(f) == n {
				out = append(out, f)
				ok = true
				break
			}
		}
		if !ok {
			return nil, eris.Errorf("export: unknown format %q", n)
		}
	}
	return out, nil
}

func createWith(path string, write func(*os.File) error) error {
	fh, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := write(fh); err != nil {
		_ = fh.Close()
		return err
	}
	if err := fh.Close(); err != nil {
		return eris.Wrapf(err, "export: close %s", path)
	}
	return nil
}

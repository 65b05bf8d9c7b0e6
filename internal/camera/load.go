// Package camera loads camera records from CSV and turns them into a
// validated model.Dataset.
package camera

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// Columns is the required CSV header in canonical order.
var Columns = []string{
	"camera_id",
	"location_name",
	"latitude",
	"longitude",
	"status",
	"installation_date",
}

// Record is one raw CSV row. Fields stay as text so that missing and
// malformed values can be reported rather than rejected at decode time.
type Record struct {
	Line             int    `csv:"-"`
	CameraID         string `csv:"camera_id" validate:"required"`
	LocationName     string `csv:"location_name" validate:"required"`
	Latitude         string `csv:"latitude" validate:"required,latitude"`
	Longitude        string `csv:"longitude" validate:"required,longitude"`
	Status           string `csv:"status" validate:"required,oneof=Active Maintenance Inactive"`
	InstallationDate string `csv:"installation_date" validate:"required,datetime=2006-01-02"`
}

// Table is the decoded CSV: the header as read and every row.
type Table struct {
	Header  []string
	Records []Record
}

// Missing returns required columns absent from the header.
func (t *Table) Missing() []string {
	return diff(Columns, t.Header)
}

// Extra returns header columns that are not part of the schema.
func (t *Table) Extra() []string {
	return diff(t.Header, Columns)
}

// Load decodes camera rows from r. Unknown columns are kept out of the
// records; a header without the required columns fails.
func Load(ctx context.Context, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		if err == io.EOF {
			return nil, eris.Wrap(ErrInvalidRecord, "camera: csv is empty")
		}
		return nil, eris.Wrap(err, "camera: read csv header")
	}

	t := &Table{Header: trimAll(dec.Header())}
	if missing := t.Missing(); len(missing) > 0 {
		return nil, eris.Wrapf(ErrInvalidRecord, "camera: missing required columns: %s", strings.Join(missing, ", "))
	}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "camera: load cancelled")
		}
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, eris.Wrapf(err, "camera: decode line %d", line)
		}
		rec.Line = line
		rec.trim()
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

func (r *Record) trim() {
	r.CameraID = strings.TrimSpace(r.CameraID)
	r.LocationName = strings.TrimSpace(r.LocationName)
	r.Latitude = strings.TrimSpace(r.Latitude)
	r.Longitude = strings.TrimSpace(r.Longitude)
	r.Status = strings.TrimSpace(r.Status)
	r.InstallationDate = strings.TrimSpace(r.InstallationDate)
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// diff returns the elements of a not present in b, in a's order.
func diff(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		seen[s] = true
	}
	var out []string
	for _, s := range a {
		if !seen[s] {
			out = append(out, s)
		}
	}
	return out
}

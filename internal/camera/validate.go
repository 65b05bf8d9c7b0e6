package camera

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/camera-coverage/internal/model"
)

// DateLayout is the accepted installation_date format.
const DateLayout = "2006-01-02"

// MinCoordinateDecimals is the precision below which coordinates are flagged.
const MinCoordinateDecimals = 4

// MinNameLength is the location_name length below which names are flagged.
const MinNameLength = 5

var idFormat = regexp.MustCompile(`^CAM-\d{3}$`)

// ValidationReport collects the outcome of every dataset check.
type ValidationReport struct {
	Passed   []string `json:"passed" yaml:"passed"`
	Warnings []string `json:"warnings" yaml:"warnings"`
	Errors   []string `json:"errors" yaml:"errors"`
}

// OK reports whether no check produced an error.
func (r *ValidationReport) OK() bool { return len(r.Errors) == 0 }

// Verdict is the one-line outcome shown at the end of a report.
func (r *ValidationReport) Verdict() string {
	switch {
	case len(r.Errors) > 0:
		return "VALIDATION FAILED"
	case len(r.Warnings) > 0:
		return "VALIDATION PASSED WITH WARNINGS"
	default:
		return "VALIDATION PASSED"
	}
}

func (r *ValidationReport) pass(format string, args ...any) {
	r.Passed = append(r.Passed, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Validate runs every structural and per-field check over t. now decides
// which installation dates are in the future.
func Validate(t *Table, now time.Time) *ValidationReport {
	r := &ValidationReport{}
	checkStructure(t, r)
	checkIDs(t.Records, r)
	checkCoordinates(t.Records, r)
	checkStatus(t.Records, r)
	checkDates(t.Records, now, r)
	checkNames(t.Records, r)
	return r
}

func checkStructure(t *Table, r *ValidationReport) {
	if missing := t.Missing(); len(missing) > 0 {
		r.fail("Missing required columns: %s", strings.Join(missing, ", "))
	} else {
		r.pass("All required columns present")
	}
	if extra := t.Extra(); len(extra) > 0 {
		r.warn("Extra columns found: %s", strings.Join(extra, ", "))
	}
	if len(t.Records) == 0 {
		r.fail("Dataset is empty (0 rows)")
	} else {
		r.pass("Dataset contains %d cameras", len(t.Records))
	}
}

func checkIDs(recs []Record, r *ValidationReport) {
	var missing int
	seen := map[string]int{}
	var dups, odd []string
	for _, rec := range recs {
		if rec.CameraID == "" {
			missing++
			continue
		}
		seen[rec.CameraID]++
		if seen[rec.CameraID] == 2 {
			dups = append(dups, rec.CameraID)
		}
		if !idFormat.MatchString(rec.CameraID) {
			odd = append(odd, rec.CameraID)
		}
	}

	if missing > 0 {
		r.fail("%d cameras have missing camera_id", missing)
	} else {
		r.pass("No missing camera IDs")
	}

	if len(dups) > 0 {
		extra := 0
		for _, id := range dups {
			extra += seen[id] - 1
		}
		r.fail("%d duplicate camera IDs: %s", extra, strings.Join(dups, ", "))
	} else {
		r.pass("No duplicate camera IDs")
	}

	if len(odd) > 0 {
		r.warn("Camera IDs with non-standard format: %s", strings.Join(odd[:min(len(odd), 5)], ", "))
	} else {
		r.pass("All camera IDs follow CAM-XXX format")
	}
}

func checkCoordinates(recs []Record, r *ValidationReport) {
	var missLat, missLon, lowPrecision int
	var badLat, badLon, unparsable []string
	b := model.NYCBounds
	for _, rec := range recs {
		if rec.Latitude == "" {
			missLat++
		}
		if rec.Longitude == "" {
			missLon++
		}
		if rec.Latitude != "" {
			lat, err := strconv.ParseFloat(rec.Latitude, 64)
			switch {
			case err != nil:
				unparsable = append(unparsable, rec.CameraID)
			case lat < b.MinLat || lat > b.MaxLat:
				badLat = append(badLat, rec.CameraID)
			}
			if decimals(rec.Latitude) < MinCoordinateDecimals {
				lowPrecision++
			}
		}
		if rec.Longitude != "" {
			lon, err := strconv.ParseFloat(rec.Longitude, 64)
			switch {
			case err != nil:
				unparsable = append(unparsable, rec.CameraID)
			case lon < b.MinLon || lon > b.MaxLon:
				badLon = append(badLon, rec.CameraID)
			}
		}
	}

	if missLat > 0 {
		r.fail("%d cameras have missing latitude", missLat)
	} else {
		r.pass("No missing latitude values")
	}
	if missLon > 0 {
		r.fail("%d cameras have missing longitude", missLon)
	} else {
		r.pass("No missing longitude values")
	}
	if len(unparsable) > 0 {
		r.fail("%d cameras have non-numeric coordinates: %s", len(unparsable), strings.Join(unparsable, ", "))
	}
	if len(badLat) > 0 {
		r.fail("%d cameras outside NYC latitude bounds: %s", len(badLat), strings.Join(badLat, ", "))
	} else {
		r.pass("All latitudes within NYC bounds")
	}
	if len(badLon) > 0 {
		r.fail("%d cameras outside NYC longitude bounds: %s", len(badLon), strings.Join(badLon, ", "))
	} else {
		r.pass("All longitudes within NYC bounds")
	}
	if lowPrecision > 0 {
		r.warn("%d cameras have low coordinate precision (<%d decimals)", lowPrecision, MinCoordinateDecimals)
	}
}

// decimals counts digits after the decimal point. Integers count as zero.
func decimals(s string) int {
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return 0
	}
	return len(s) - i - 1
}

func checkStatus(recs []Record, r *ValidationReport) {
	var missing int
	var invalid []string
	seen := map[string]bool{}
	for _, rec := range recs {
		if rec.Status == "" {
			missing++
			continue
		}
		if _, ok := model.ParseStatus(rec.Status); !ok && !seen[rec.Status] {
			seen[rec.Status] = true
			invalid = append(invalid, rec.Status)
		}
	}

	valid := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		valid[i] = string(s)
	}

	if missing > 0 {
		r.fail("%d cameras have missing status", missing)
	} else {
		r.pass("No missing status values")
	}
	if len(invalid) > 0 {
		r.fail("Invalid status values found: %s", strings.Join(invalid, ", "))
		r.fail("Valid values are: %s", strings.Join(valid, ", "))
	} else {
		r.pass("All status values valid (%s)", strings.Join(valid, ", "))
	}
}

func checkDates(recs []Record, now time.Time, r *ValidationReport) {
	var missing int
	var invalid, future []string
	today := dateOf(now)
	for _, rec := range recs {
		if rec.InstallationDate == "" {
			missing++
			continue
		}
		d, err := time.Parse(DateLayout, rec.InstallationDate)
		if err != nil {
			invalid = append(invalid, rec.CameraID)
			continue
		}
		if d.After(today) {
			future = append(future, rec.CameraID)
		}
	}

	if missing > 0 {
		r.fail("%d cameras have missing installation_date", missing)
	} else {
		r.pass("No missing installation dates")
	}
	if len(invalid) > 0 {
		r.fail("%d cameras have invalid date format: %s", len(invalid), strings.Join(invalid, ", "))
	} else {
		r.pass("All dates in valid format (YYYY-MM-DD)")
	}
	if len(future) > 0 {
		r.fail("%d cameras have future installation dates: %s", len(future), strings.Join(future, ", "))
	}
}

func checkNames(recs []Record, r *ValidationReport) {
	var empty, short int
	for _, rec := range recs {
		switch {
		case rec.LocationName == "":
			empty++
		case len([]rune(rec.LocationName)) < MinNameLength:
			short++
		}
	}

	if empty > 0 {
		r.fail("%d cameras have missing location_name", empty)
	} else {
		r.pass("No missing location names")
	}
	if short > 0 {
		r.warn("%d cameras have very short location names (<%d chars)", short, MinNameLength)
	}
}

// dateOf truncates t to midnight UTC of its calendar day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

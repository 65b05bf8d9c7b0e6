// Package analysis computes descriptive statistics over a camera dataset:
// status mix, borough distribution, extent, installation timeline and
// location naming.
package analysis

import (
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/camera-coverage/internal/model"
)

// Borough is an approximate borough bounding box.
type Borough struct {
	Name   string
	Bounds model.BBox
}

// UnknownBorough labels cameras that fall in no borough box.
const UnknownBorough = "Unknown"

// Boroughs are checked in order; the first box containing a camera wins.
var Boroughs = []Borough{
	{"Manhattan", model.BBox{MinLat: 40.7001, MaxLat: 40.8824, MinLon: -74.0250, MaxLon: -73.9069}},
	{"Brooklyn", model.BBox{MinLat: 40.5603, MaxLat: 40.7282, MinLon: -74.0420, MaxLon: -73.8332}},
	{"Queens", model.BBox{MinLat: 40.5450, MaxLat: 40.8097, MinLon: -73.9628, MaxLon: -73.6911}},
	{"Bronx", model.BBox{MinLat: 40.7850, MaxLat: 40.9176, MinLon: -73.9680, MaxLon: -73.7597}},
	{"Staten Island", model.BBox{MinLat: 40.4774, MaxLat: 40.6513, MinLon: -74.2591, MaxLon: -74.0300}},
}

// stopWords are skipped when counting words in location names.
var stopWords = map[string]bool{
	"the": true, "and": true, "of": true, "to": true, "a": true, "in": true, "at": true, "-": true,
}

// TopWordLimit caps Names.TopWords.
const TopWordLimit = 10

// Count is a labelled tally with its share of the dataset in percent.
type Count struct {
	Label   string  `json:"label" yaml:"label"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Timeline describes installation dates.
type Timeline struct {
	Earliest time.Time `json:"earliest" yaml:"earliest"`
	Latest   time.Time `json:"latest" yaml:"latest"`
	SpanDays int       `json:"span_days" yaml:"span_days"`
	ByYear   []Count   `json:"by_year" yaml:"by_year"`
	ByMonth  []Count   `json:"by_month" yaml:"by_month"`
}

// SpanYears is the timeline span in years of 365.25 days.
func (t Timeline) SpanYears() float64 { return float64(t.SpanDays) / 365.25 }

// Names describes location_name lengths and frequent words.
type Names struct {
	Shortest int     `json:"shortest" yaml:"shortest"`
	Longest  int     `json:"longest" yaml:"longest"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Median   float64 `json:"median" yaml:"median"`
	TopWords []Count `json:"top_words" yaml:"top_words"`
}

// Summary is the full descriptive summary of a dataset.
type Summary struct {
	Total           int        `json:"total" yaml:"total"`
	Status          []Count    `json:"status" yaml:"status"`
	OperationalRate float64    `json:"operational_rate" yaml:"operational_rate"`
	Boroughs        []Count    `json:"boroughs" yaml:"boroughs"`
	Extent          model.BBox `json:"extent" yaml:"extent"`
	CenterLat       float64    `json:"center_lat" yaml:"center_lat"`
	CenterLon       float64    `json:"center_lon" yaml:"center_lon"`
	Timeline        Timeline   `json:"timeline" yaml:"timeline"`
	Names           Names      `json:"names" yaml:"names"`
}

// Summarize computes a Summary. An empty dataset yields a zero Summary.
func Summarize(ds model.Dataset) Summary {
	n := ds.Len()
	if n == 0 {
		return Summary{}
	}

	s := Summary{Total: n}

	byStatus := ds.CountByStatus()
	for _, st := range model.Statuses {
		if c := byStatus[st]; c > 0 {
			s.Status = append(s.Status, count(string(st), c, n))
		}
	}
	s.OperationalRate = percent(byStatus[model.StatusActive], n)

	boroughs := map[string]int{}
	for _, c := range ds.Cameras() {
		boroughs[AssignBorough(c.Lat, c.Lon)]++
	}
	s.Boroughs = ranked(boroughs, n)

	s.Extent, _ = ds.Extent()
	s.CenterLat, s.CenterLon = s.Extent.Center()

	s.Timeline = timeline(ds.Cameras(), n)
	s.Names = names(ds.Cameras(), n)
	return s
}

// AssignBorough returns the first borough whose box contains lat/lon.
func AssignBorough(lat, lon float64) string {
	for _, b := range Boroughs {
		if b.Bounds.Contains(lat, lon) {
			return b.Name
		}
	}
	return UnknownBorough
}

func timeline(cams []model.Camera, n int) Timeline {
	var t Timeline
	years := map[string]int{}
	months := map[string]int{}
	for i, c := range cams {
		if i == 0 || c.InstalledOn.Before(t.Earliest) {
			t.Earliest = c.InstalledOn
		}
		if i == 0 || c.InstalledOn.After(t.Latest) {
			t.Latest = c.InstalledOn
		}
		years[c.InstalledOn.Format("2006")]++
		months[c.InstalledOn.Format("2006-01")]++
	}
	t.SpanDays = int(t.Latest.Sub(t.Earliest).Hours() / 24)
	t.ByYear = chronological(years, n)
	t.ByMonth = chronological(months, n)
	return t
}

func names(cams []model.Camera, n int) Names {
	lengths := make([]float64, len(cams))
	words := map[string]int{}
	for i, c := range cams {
		lengths[i] = float64(len([]rune(c.Name)))
		for _, w := range strings.Fields(strings.ToLower(c.Name)) {
			if !stopWords[w] {
				words[w]++
			}
		}
	}
	sort.Float64s(lengths)

	top := ranked(words, n)
	if len(top) > TopWordLimit {
		top = top[:TopWordLimit]
	}
	return Names{
		Shortest: int(lengths[0]),
		Longest:  int(lengths[len(lengths)-1]),
		Mean:     stat.Mean(lengths, nil),
		Median:   median(lengths),
		TopWords: top,
	}
}

// median expects sorted input.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// ranked orders tallies by count descending, then label.
func ranked(m map[string]int, total int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, count(k, v, total))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func chronological(m map[string]int, total int) []Count {
	out := make([]Count, 0, len(m))
	for k, v := range m {
		out = append(out, count(k, v, total))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func count(label string, c, total int) Count {
	return Count{Label: label, Count: c, Percent: percent(c, total)}
}

func percent(c, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(c) / float64(total) * 100
}

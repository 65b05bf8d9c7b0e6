package spatial

import (
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// NeighborStat is the distance from one point to its nearest other point.
type NeighborStat struct {
	PointID   string  `json:"point_id" csv:"camera_id" yaml:"point_id"`
	NearestID string  `json:"nearest_id" csv:"nearest_neighbor" yaml:"nearest_id"`
	DistanceM float64 `json:"distance_m" csv:"distance_m" yaml:"distance_m"`
}

// NeighborThresholds classifies nearest distances as isolated (above
// IsolatedM) or clustered (below ClusteredM).
type NeighborThresholds struct {
	IsolatedM  float64
	ClusteredM float64
}

// DefaultNeighborThresholds are 1 km isolation and 200 m clustering.
var DefaultNeighborThresholds = NeighborThresholds{IsolatedM: 1000, ClusteredM: 200}

// NeighborSummary aggregates nearest-neighbor distances. Std is the
// population standard deviation.
type NeighborSummary struct {
	Count     int     `json:"count" yaml:"count"`
	Mean      float64 `json:"mean_m" yaml:"mean_m"`
	Median    float64 `json:"median_m" yaml:"median_m"`
	Std       float64 `json:"std_m" yaml:"std_m"`
	Min       float64 `json:"min_m" yaml:"min_m"`
	Max       float64 `json:"max_m" yaml:"max_m"`
	Isolated  int     `json:"isolated" yaml:"isolated"`
	Clustered int     `json:"clustered" yaml:"clustered"`
}

// NearestNeighbors returns one NeighborStat per point, in input order.
func NearestNeighbors(points []ProjectedPoint) ([]NeighborStat, error) {
	if len(points) < 2 {
		return nil, eris.Wrapf(ErrEmptyDataset, "spatial: nearest neighbors need 2 points, got %d", len(points))
	}

	ix := NewIndex(points)
	out := make([]NeighborStat, len(points))
	for i, p := range points {
		j, d := ix.Nearest(i)
		out[i] = NeighborStat{PointID: p.ID, NearestID: points[j].ID, DistanceM: d}
	}
	return out, nil
}

// Summarize computes aggregate statistics over stats.
func Summarize(stats []NeighborStat, th NeighborThresholds) NeighborSummary {
	if len(stats) == 0 {
		return NeighborSummary{}
	}

	ds := make([]float64, len(stats))
	s := NeighborSummary{Count: len(stats)}
	for i, st := range stats {
		ds[i] = st.DistanceM
		if st.DistanceM > th.IsolatedM {
			s.Isolated++
		}
		if st.DistanceM < th.ClusteredM {
			s.Clustered++
		}
	}

	s.Mean = stat.Mean(ds, nil)
	s.Std = stat.PopStdDev(ds, nil)
	s.Min = floats.Min(ds)
	s.Max = floats.Max(ds)

	sort.Float64s(ds)
	mid := len(ds) / 2
	if len(ds)%2 == 1 {
		s.Median = ds[mid]
	} else {
		s.Median = (ds[mid-1] + ds[mid]) / 2
	}
	return s
}

// Isolated returns the stats whose distance exceeds limitM, farthest first.
func Isolated(stats []NeighborStat, limitM float64) []NeighborStat {
	var out []NeighborStat
	for _, st := range stats {
		if st.DistanceM > limitM {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceM > out[j].DistanceM })
	return out
}

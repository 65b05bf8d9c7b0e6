package spatial

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
)

// Noise is the label of points that belong to no cluster.
const Noise = -1

const unassigned = -2

// Role is the DBSCAN role of a point.
type Role string

const (
	RoleCore   Role = "core"
	RoleBorder Role = "border"
	RoleNoise  Role = "noise"
)

// Assignment is the cluster label and role of one point.
type Assignment struct {
	PointID string `json:"point_id" csv:"camera_id" yaml:"point_id"`
	Label   int    `json:"cluster" csv:"cluster" yaml:"cluster"`
	Role    Role   `json:"role" csv:"role" yaml:"role"`
}

// ClusterSummary describes one cluster.
type ClusterSummary struct {
	Label   int      `json:"cluster" yaml:"cluster"`
	Size    int      `json:"size" yaml:"size"`
	Members []string `json:"members" yaml:"members"`
}

// Cluster labels each point by density-based clustering and returns the
// label keyed by point id. See ClusterDetail for the exact rules.
func Cluster(points []ProjectedPoint, epsilonM float64, minSamples int) (map[string]int, error) {
	assignments, err := ClusterDetail(points, epsilonM, minSamples)
	if err != nil {
		return nil, err
	}
	labels := make(map[string]int, len(assignments))
	for _, a := range assignments {
		labels[a.PointID] = a.Label
	}
	return labels, nil
}

// ClusterDetail runs DBSCAN and returns one Assignment per point in input
// order.
//
// A point's neighborhood is every point within epsilonM, itself included;
// it is a core point when the neighborhood holds at least minSamples points.
// Points are visited in ascending id order. Each unlabelled core point seeds
// the next cluster id (0, 1, ...), which then grows breadth-first through
// the neighborhoods of its core points. A border point reachable from more
// than one cluster stays in the first cluster that reaches it. Everything
// left unlabelled is Noise.
func ClusterDetail(points []ProjectedPoint, epsilonM float64, minSamples int) ([]Assignment, error) {
	if !(epsilonM > 0) || math.IsInf(epsilonM, 0) {
		return nil, eris.Wrapf(ErrInvalidParameter, "spatial: cluster epsilon %v must be positive", epsilonM)
	}
	if minSamples < 1 {
		return nil, eris.Wrapf(ErrInvalidParameter, "spatial: cluster min_samples %d must be at least 1", minSamples)
	}

	n := len(points)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return points[order[a]].ID < points[order[b]].ID })

	sorted := make([]ProjectedPoint, n)
	for k, i := range order {
		sorted[k] = points[i]
	}

	ix := NewIndex(sorted)
	neighbors := make([][]int, n)
	core := make([]bool, n)
	for k := range sorted {
		neighbors[k] = ix.Within(k, epsilonM)
		core[k] = len(neighbors[k]) >= minSamples
	}

	labels := make([]int, n)
	for k := range labels {
		labels[k] = unassigned
	}

	next := 0
	for k := range sorted {
		if labels[k] != unassigned || !core[k] {
			continue
		}
		labels[k] = next
		queue := []int{k}
		for len(queue) > 0 {
			q := queue[0]
			queue = queue[1:]
			for _, nb := range neighbors[q] {
				if labels[nb] != unassigned {
					continue
				}
				labels[nb] = next
				if core[nb] {
					queue = append(queue, nb)
				}
			}
		}
		next++
	}

	out := make([]Assignment, n)
	for k, i := range order {
		a := Assignment{PointID: sorted[k].ID, Label: labels[k]}
		switch {
		case core[k]:
			a.Role = RoleCore
		case labels[k] == unassigned:
			a.Label = Noise
			a.Role = RoleNoise
		default:
			a.Role = RoleBorder
		}
		out[i] = a
	}
	return out, nil
}

// Summaries groups assignments by cluster, ordered by label. Noise is not
// included. Members are sorted by id.
func Summaries(assignments []Assignment) []ClusterSummary {
	byLabel := make(map[int][]string)
	for _, a := range assignments {
		if a.Label == Noise {
			continue
		}
		byLabel[a.Label] = append(byLabel[a.Label], a.PointID)
	}
	out := make([]ClusterSummary, 0, len(byLabel))
	for label, members := range byLabel {
		sort.Strings(members)
		out = append(out, ClusterSummary{Label: label, Size: len(members), Members: members})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// NoiseCount returns how many assignments are Noise.
func NoiseCount(assignments []Assignment) int {
	n := 0
	for _, a := range assignments {
		if a.Label == Noise {
			n++
		}
	}
	return n
}

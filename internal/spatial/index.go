package spatial

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// pointTolerance is the half-width of the rectangle each point occupies in
// the R-tree.
const pointTolerance = 1e-6

type indexItem struct {
	rect rtreego.Rect
	idx  int
}

func (it indexItem) Bounds() rtreego.Rect {
	return it.rect
}

// Index is an R-tree over projected points. Results are positions into the
// slice the index was built from.
type Index struct {
	points []ProjectedPoint
	tree   *rtreego.Rtree
}

// NewIndex builds an index over points. The slice is not copied and must
// not be modified while the index is in use.
func NewIndex(points []ProjectedPoint) *Index {
	tree := rtreego.NewTree(2, 25, 50)
	for i, p := range points {
		tree.Insert(indexItem{rect: rtreego.Point{p.X, p.Y}.ToRect(pointTolerance), idx: i})
	}
	return &Index{points: points, tree: tree}
}

// Len returns the number of indexed points.
func (ix *Index) Len() int { return len(ix.points) }

// Within returns, in ascending position order, every point whose distance
// to point i is at most r. Point i itself is included.
func (ix *Index) Within(i int, r float64) []int {
	p := ix.points[i]
	cands := ix.tree.SearchIntersect(rtreego.Point{p.X, p.Y}.ToRect(math.Max(r, pointTolerance)))
	out := make([]int, 0, len(cands))
	for _, c := range cands {
		j := c.(indexItem).idx
		if distance(p, ix.points[j]) <= r {
			out = append(out, j)
		}
	}
	sort.Ints(out)
	return out
}

// Nearest returns the closest other point to point i and its distance.
// Equal distances resolve to the lower id, then the lower position. It
// returns -1 when the index holds fewer than two points.
func (ix *Index) Nearest(i int) (int, float64) {
	if len(ix.points) < 2 {
		return -1, 0
	}
	p := ix.points[i]

	// The two nearest rectangles always include at least one other point;
	// its distance bounds the exact scan below.
	bound := math.Inf(1)
	for _, c := range ix.tree.NearestNeighbors(2, rtreego.Point{p.X, p.Y}) {
		if c == nil {
			continue
		}
		j := c.(indexItem).idx
		if j == i {
			continue
		}
		bound = math.Min(bound, distance(p, ix.points[j]))
	}
	if math.IsInf(bound, 1) {
		return ix.scanNearest(i)
	}

	best, bestD := -1, math.Inf(1)
	for _, j := range ix.Within(i, bound) {
		if j == i {
			continue
		}
		if d := distance(p, ix.points[j]); best < 0 || ix.closer(d, j, bestD, best) {
			best, bestD = j, d
		}
	}
	if best < 0 {
		return ix.scanNearest(i)
	}
	return best, bestD
}

// scanNearest is the brute-force fallback for Nearest.
func (ix *Index) scanNearest(i int) (int, float64) {
	p := ix.points[i]
	best, bestD := -1, math.Inf(1)
	for j := range ix.points {
		if j == i {
			continue
		}
		if d := distance(p, ix.points[j]); best < 0 || ix.closer(d, j, bestD, best) {
			best, bestD = j, d
		}
	}
	return best, bestD
}

func (ix *Index) closer(d float64, j int, bestD float64, best int) bool {
	if d != bestD {
		return d < bestD
	}
	if ix.points[j].ID != ix.points[best].ID {
		return ix.points[j].ID < ix.points[best].ID
	}
	return j < best
}

func distance(a, b ProjectedPoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex_WithinMatchesScan(t *testing.T) {
	t.Parallel()

	pts := randomPoints(200, 31)
	ix := NewIndex(pts)
	assert.Equal(t, len(pts), ix.Len())

	for _, r := range []float64{0, 250, 900} {
		for i := range pts {
			var want []int
			for j := range pts {
				if distance(pts[i], pts[j]) <= r {
					want = append(want, j)
				}
			}
			assert.Equal(t, want, ix.Within(i, r), "point %d radius %.0f", i, r)
		}
	}
}

func TestIndex_WithinInclusiveBoundary(t *testing.T) {
	t.Parallel()

	ix := NewIndex([]ProjectedPoint{pt("a", 0, 0), pt("b", 30, 40), pt("c", 31, 40)})
	assert.Equal(t, []int{0, 1}, ix.Within(0, 50))
}

func TestIndex_Nearest(t *testing.T) {
	t.Parallel()

	ix := NewIndex([]ProjectedPoint{pt("a", 0, 0), pt("b", 3, 4), pt("c", 100, 0)})
	j, d := ix.Nearest(0)
	assert.Equal(t, 1, j)
	assert.InDelta(t, 5, d, 1e-12)

	j, _ = ix.Nearest(2)
	assert.Equal(t, 1, j)
}

func TestIndex_NearestSinglePoint(t *testing.T) {
	t.Parallel()

	j, _ := NewIndex([]ProjectedPoint{pt("a", 0, 0)}).Nearest(0)
	assert.Equal(t, -1, j)
}

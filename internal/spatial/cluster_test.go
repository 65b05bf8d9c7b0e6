package spatial

import (
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCluster_ThreePointScenario(t *testing.T) {
	t.Parallel()

	pts := []ProjectedPoint{pt("p1", 0, 0), pt("p2", 10, 0), pt("p3", 1000, 0)}
	labels, err := Cluster(pts, 50, 2)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"p1": 0, "p2": 0, "p3": Noise}, labels)
}

func TestCluster_MinSamplesBoundary(t *testing.T) {
	t.Parallel()

	const minSamples = 4
	var pts []ProjectedPoint
	for i := 0; i < minSamples-1; i++ {
		pts = append(pts, pt(fmt.Sprintf("c%d", i), float64(i)*5, 0))
	}

	labels, err := Cluster(pts, 20, minSamples)
	require.NoError(t, err)
	for id, l := range labels {
		assert.Equal(t, Noise, l, id)
	}

	pts = append(pts, pt("c9", 7, 3))
	labels, err = Cluster(pts, 20, minSamples)
	require.NoError(t, err)
	require.Len(t, labels, minSamples)
	for id, l := range labels {
		assert.Equal(t, 0, l, id)
	}
}

func TestCluster_CoreBorderNoise(t *testing.T) {
	t.Parallel()

	// a, b, c are mutually within 10 m; d is 15 m from c only; e is far.
	pts := []ProjectedPoint{
		pt("a", 0, 0),
		pt("b", 5, 0),
		pt("c", 10, 0),
		pt("d", 25, 0),
		pt("e", 500, 0),
	}
	got, err := ClusterDetail(pts, 15, 3)
	require.NoError(t, err)

	want := []Assignment{
		{PointID: "a", Label: 0, Role: RoleCore},
		{PointID: "b", Label: 0, Role: RoleCore},
		{PointID: "c", Label: 0, Role: RoleCore},
		{PointID: "d", Label: 0, Role: RoleBorder},
		{PointID: "e", Label: Noise, Role: RoleNoise},
	}
	assert.Equal(t, want, got)
}

func TestCluster_BorderKeepsFirstCluster(t *testing.T) {
	t.Parallel()

	// m sits between two dense groups and is a border point of both.
	pts := []ProjectedPoint{
		pt("z1", 40, 0), pt("z2", 41, 0), pt("z3", 42, 0), pt("z4", 43, 0),
		pt("a1", 0, 0), pt("a2", 1, 0), pt("a3", 2, 0), pt("a4", 3, 0),
		pt("m", 21.5, 0),
	}
	got, err := ClusterDetail(pts, 19, 4)
	require.NoError(t, err)

	byID := map[string]Assignment{}
	for _, a := range got {
		byID[a.PointID] = a
	}
	// Ids are visited in ascending order, so the "a" group is cluster 0.
	assert.Equal(t, 0, byID["a1"].Label)
	assert.Equal(t, 1, byID["z1"].Label)
	assert.Equal(t, RoleBorder, byID["m"].Role)
	assert.Equal(t, 0, byID["m"].Label)
}

func TestCluster_LabelsFollowIDOrder(t *testing.T) {
	t.Parallel()

	pts := []ProjectedPoint{
		pt("b-2", 1000, 0), pt("b-1", 1001, 0),
		pt("a-2", 0, 0), pt("a-1", 1, 0),
	}
	labels, err := Cluster(pts, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, labels["a-1"])
	assert.Equal(t, 0, labels["a-2"])
	assert.Equal(t, 1, labels["b-1"])
	assert.Equal(t, 1, labels["b-2"])
}

func TestCluster_Deterministic(t *testing.T) {
	t.Parallel()

	pts := randomPoints(100, 21)
	first, err := ClusterDetail(pts, 800, 3)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ClusterDetail(pts, 800, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCluster_Partition(t *testing.T) {
	t.Parallel()

	pts := randomPoints(100, 4)
	got, err := ClusterDetail(pts, 700, 3)
	require.NoError(t, err)
	require.Len(t, got, len(pts))

	seen := map[string]bool{}
	total := NoiseCount(got)
	for _, s := range Summaries(got) {
		total += s.Size
		for _, m := range s.Members {
			assert.False(t, seen[m], "point %s in two clusters", m)
			seen[m] = true
		}
	}
	assert.Equal(t, len(pts), total)
}

func TestCluster_MinSamplesOne(t *testing.T) {
	t.Parallel()

	pts := []ProjectedPoint{pt("a", 0, 0), pt("b", 100, 0)}
	labels, err := Cluster(pts, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 0, "b": 1}, labels)
}

func TestCluster_InvalidParameters(t *testing.T) {
	t.Parallel()

	pts := []ProjectedPoint{pt("a", 0, 0)}
	tests := []struct {
		name string
		eps  float64
		min  int
	}{
		{"zero epsilon", 0, 2},
		{"negative epsilon", -1, 2},
		{"zero min samples", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Cluster(pts, tt.eps, tt.min)
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrInvalidParameter))
		})
	}
}

func TestSummaries(t *testing.T) {
	t.Parallel()

	got := Summaries([]Assignment{
		{PointID: "c", Label: 1},
		{PointID: "a", Label: 0},
		{PointID: "x", Label: Noise},
		{PointID: "b", Label: 0},
	})
	assert.Equal(t, []ClusterSummary{
		{Label: 0, Size: 2, Members: []string{"a", "b"}},
		{Label: 1, Size: 1, Members: []string{"c"}},
	}, got)
}

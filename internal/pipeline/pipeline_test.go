package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/camera-coverage/internal/model"
	"github.com/sells-group/camera-coverage/internal/spatial"
	"github.com/sells-group/camera-coverage/internal/store"
)

var installed = time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)

func midtown() model.Dataset {
	return model.NewDataset([]model.Camera{
		{ID: "CAM-001", Name: "Times Square", Lat: 40.7580, Lon: -73.9855, Status: model.StatusActive, InstalledOn: installed},
		{ID: "CAM-002", Name: "Bryant Park", Lat: 40.7536, Lon: -73.9832, Status: model.StatusActive, InstalledOn: installed},
		{ID: "CAM-003", Name: "Grand Central", Lat: 40.7527, Lon: -73.9772, Status: model.StatusMaintenance, InstalledOn: installed},
		{ID: "CAM-004", Name: "Rockefeller Center", Lat: 40.7587, Lon: -73.9787, Status: model.StatusActive, InstalledOn: installed},
		{ID: "CAM-005", Name: "Penn Station", Lat: 40.7506, Lon: -73.9935, Status: model.StatusInactive, InstalledOn: installed},
	})
}

func testParams() Params {
	p := DefaultParams()
	p.Source = "midtown.csv"
	p.RadiusM = 100
	p.EpsilonM = 600
	p.MinSamples = 2
	p.DensityGrid = 20
	return p
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 50.0, p.RadiusM)
	assert.Equal(t, 500.0, p.EpsilonM)
	assert.Equal(t, 3, p.MinSamples)
	assert.Equal(t, 0.0, p.MinGapAreaM2)
	assert.Equal(t, spatial.DefaultMarginM, p.MarginM)
	assert.Equal(t, spatial.DefaultNeighborThresholds, p.Thresholds)
}

func TestRun(t *testing.T) {
	res, err := Run(context.Background(), midtown(), testParams())
	require.NoError(t, err)

	assert.Len(t, res.Points, 5)
	assert.Len(t, res.Neighbors, 5)
	assert.Equal(t, 5, res.NeighborSummary.Count)
	assert.Len(t, res.Clusters, 5)
	assert.Equal(t, 5, res.Summary.Total)

	require.NotNil(t, res.Coverage)
	assert.Equal(t, 5, res.Coverage.Disks)
	require.NotNil(t, res.AreaOfInterest)
	require.NotEmpty(t, res.Gaps)
	assert.Empty(t, res.SmallGaps)

	// Disks sit inside the area of interest, so coverage and gaps tile it.
	aoi := res.AreaOfInterest.Area()
	assert.InEpsilon(t, aoi, res.Coverage.AreaM2+spatial.TotalArea(res.Gaps), 1e-6)

	require.NotNil(t, res.Density)
	assert.Equal(t, 20, res.Density.Size)
}

func TestRun_SkipsDensity(t *testing.T) {
	p := testParams()
	p.DensityGrid = 0

	res, err := Run(context.Background(), midtown(), p)
	require.NoError(t, err)
	assert.Nil(t, res.Density)
}

func TestRun_EngineErrorAborts(t *testing.T) {
	ds := model.NewDataset([]model.Camera{
		{ID: "CAM-001", Name: "Times Square", Lat: 40.7580, Lon: -73.9855, Status: model.StatusActive, InstalledOn: installed},
	})

	res, err := Run(context.Background(), ds, testParams())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, spatial.ErrEmptyDataset)
}

func TestRun_InvalidParameter(t *testing.T) {
	p := testParams()
	p.RadiusM = -1

	_, err := Run(context.Background(), midtown(), p)
	require.Error(t, err)
	assert.ErrorIs(t, err, spatial.ErrInvalidParameter)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, midtown(), testParams())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResult_Layers(t *testing.T) {
	res, err := Run(context.Background(), midtown(), testParams())
	require.NoError(t, err)

	l := res.Layers()
	assert.Len(t, l.Cameras, 5)
	assert.Len(t, l.Neighbors, 5)
	assert.Len(t, l.Clusters, 5)
	assert.Same(t, res.Coverage, l.Coverage)
	assert.Equal(t, res.Gaps, l.Gaps)
}

func TestResult_Report(t *testing.T) {
	res, err := Run(context.Background(), midtown(), testParams())
	require.NoError(t, err)

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	rep := res.Report(now)
	assert.Equal(t, now, rep.GeneratedAt)
	assert.Equal(t, "midtown.csv", rep.Source)
	require.NotNil(t, rep.Neighbors)
	assert.Equal(t, res.NeighborSummary, *rep.Neighbors)
	require.NotNil(t, rep.Clusters)
	assert.Equal(t, 600.0, rep.Clusters.EpsilonM)
	require.NotNil(t, rep.Coverage)
	assert.Equal(t, len(res.Gaps), rep.Coverage.Gaps)
	assert.InDelta(t, res.AreaOfInterest.Area(), rep.Coverage.AreaOfInterestM2, 1e-6)
}

func newStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestRunner_Execute(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	res, run, err := NewRunner(st).Execute(ctx, midtown(), testParams())
	require.NoError(t, err)
	require.NotNil(t, res)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, testParams().RunParams(5), got.Params)

	var sum RunSummary
	require.NoError(t, json.Unmarshal(got.Summary, &sum))
	assert.Equal(t, 5, sum.Cameras)
	assert.Equal(t, len(res.Gaps), sum.Gaps)
	assert.InDelta(t, res.Coverage.AreaM2, sum.CoverageAreaM2, 1e-6)
}

func TestRunner_ExecuteRecordsFailure(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	p := testParams()
	p.EpsilonM = 0

	res, run, err := NewRunner(st).Execute(ctx, midtown(), p)
	require.Error(t, err)
	assert.Nil(t, res)
	require.NotNil(t, run)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.NotEmpty(t, got.Error)
}

// completeFails is a store whose CompleteRun always errors.
type completeFails struct {
	store.Store
}

func (completeFails) CompleteRun(context.Context, string, json.RawMessage) error {
	return errors.New("disk full")
}

func TestRunner_ExecuteCompleteFailureMarksFailed(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	res, run, err := NewRunner(completeFails{st}).Execute(ctx, midtown(), testParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Nil(t, res)
	require.NotNil(t, run)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Contains(t, got.Error, "disk full")
}

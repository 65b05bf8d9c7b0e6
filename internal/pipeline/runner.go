package pipeline

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/camera-coverage/internal/model"
	"github.com/sells-group/camera-coverage/internal/spatial"
	"github.com/sells-group/camera-coverage/internal/store"
)

// RunSummary is the compact outcome persisted with a completed run.
type RunSummary struct {
	Cameras          int     `json:"cameras"`
	MeanNeighborM    float64 `json:"mean_neighbor_m"`
	MedianNeighborM  float64 `json:"median_neighbor_m"`
	Clusters         int     `json:"clusters"`
	Noise            int     `json:"noise"`
	CoverageAreaM2   float64 `json:"coverage_area_m2"`
	CoverageComps    int     `json:"coverage_components"`
	Gaps             int     `json:"gaps"`
	GapAreaM2        float64 `json:"gap_area_m2"`
	DurationMillisec int64   `json:"duration_ms"`
}

// RunSummary condenses r for persistence.
func (r *Result) RunSummary() RunSummary {
	s := RunSummary{
		Cameras:          r.Dataset.Len(),
		MeanNeighborM:    r.NeighborSummary.Mean,
		MedianNeighborM:  r.NeighborSummary.Median,
		Clusters:         len(spatial.Summaries(r.Clusters)),
		Noise:            spatial.NoiseCount(r.Clusters),
		Gaps:             len(r.Gaps),
		GapAreaM2:        spatial.TotalArea(r.Gaps),
		DurationMillisec: r.Duration.Milliseconds(),
	}
	if r.Coverage != nil {
		s.CoverageAreaM2 = r.Coverage.AreaM2
		s.CoverageComps = r.Coverage.Components()
	}
	return s
}

// Runner executes analyses and records each one in a Store.
type Runner struct {
	store store.Store
}

// NewRunner creates a Runner backed by st.
func NewRunner(st store.Store) *Runner {
	return &Runner{store: st}
}

// Execute records a run, analyzes ds and marks the run complete or failed.
// The returned run reflects the state at creation; callers re-read it for
// the final status.
func (r *Runner) Execute(ctx context.Context, ds model.Dataset, p Params) (*Result, *model.Run, error) {
	run, err := r.store.CreateRun(ctx, p.RunParams(ds.Len()))
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: create run")
	}
	log := zap.L().With(zap.String("run_id", run.ID))

	res, err := Run(ctx, ds, p)
	if err != nil {
		r.fail(ctx, log, run.ID, err)
		return nil, run, err
	}

	raw, err := json.Marshal(res.RunSummary())
	if err != nil {
		err = eris.Wrap(err, "pipeline: marshal summary")
		r.fail(ctx, log, run.ID, err)
		return nil, run, err
	}
	if err := r.store.CompleteRun(ctx, run.ID, raw); err != nil {
		err = eris.Wrap(err, "pipeline: complete run")
		r.fail(ctx, log, run.ID, err)
		return nil, run, err
	}
	log.Info("pipeline: run recorded")
	return res, run, nil
}

// fail marks the run failed even when ctx is already cancelled.
func (r *Runner) fail(ctx context.Context, log *zap.Logger, runID string, runErr error) {
	if err := r.store.FailRun(context.WithoutCancel(ctx), runID, runErr); err != nil {
		log.Error("pipeline: failed to record run failure", zap.Error(err))
	}
}

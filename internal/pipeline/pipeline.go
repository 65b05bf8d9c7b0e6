// Package pipeline runs a complete camera coverage analysis: projection,
// then the neighbor, coverage/gap, cluster and density engines in parallel.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/camera-coverage/internal/analysis"
	"github.com/sells-group/camera-coverage/internal/export"
	"github.com/sells-group/camera-coverage/internal/model"
	"github.com/sells-group/camera-coverage/internal/report"
	"github.com/sells-group/camera-coverage/internal/spatial"
)

// Params are the scalar inputs of one run.
type Params struct {
	Source       string
	RadiusM      float64
	EpsilonM     float64
	MinSamples   int
	MinGapAreaM2 float64
	MarginM      float64
	// DensityGrid is the KDE grid size; zero skips density estimation.
	DensityGrid int
	Thresholds  spatial.NeighborThresholds
}

// DefaultParams returns the stock analysis settings.
func DefaultParams() Params {
	return Params{
		RadiusM:     50,
		EpsilonM:    500,
		MinSamples:  3,
		MarginM:     spatial.DefaultMarginM,
		DensityGrid: 100,
		Thresholds:  spatial.DefaultNeighborThresholds,
	}
}

// RunParams converts p to the persisted form.
func (p Params) RunParams(cameras int) model.RunParams {
	return model.RunParams{
		Source:       p.Source,
		Cameras:      cameras,
		RadiusM:      p.RadiusM,
		EpsilonM:     p.EpsilonM,
		MinSamples:   p.MinSamples,
		MinGapAreaM2: p.MinGapAreaM2,
		MarginM:      p.MarginM,
		DensityGrid:  p.DensityGrid,
	}
}

// Result holds every engine output of one run.
type Result struct {
	Params          Params
	Dataset         model.Dataset
	Points          []spatial.ProjectedPoint
	Summary         analysis.Summary
	Neighbors       []spatial.NeighborStat
	NeighborSummary spatial.NeighborSummary
	Clusters        []spatial.Assignment
	Coverage        *spatial.CoverageRegion
	AreaOfInterest  *geom.Polygon
	Gaps            []spatial.Gap
	SmallGaps       []spatial.Gap
	Density         *spatial.DensityGrid
	Duration        time.Duration
}

// Run projects ds once and runs the engines concurrently. The first engine
// error cancels the rest and is returned.
func Run(ctx context.Context, ds model.Dataset, p Params) (*Result, error) {
	log := zap.L().With(zap.String("source", p.Source), zap.Int("cameras", ds.Len()))
	log.Info("pipeline: starting analysis")
	start := time.Now()

	points, err := spatial.Project(ds)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: project")
	}

	res := &Result{
		Params:  p,
		Dataset: ds,
		Points:  points,
		Summary: analysis.Summarize(ds),
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)

	stage := func(name string, fn func() error) {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return eris.Wrapf(err, "pipeline: %s cancelled", name)
			}
			t := time.Now()
			if err := fn(); err != nil {
				log.Error("pipeline: stage failed", zap.String("stage", name), zap.Error(err))
				return err
			}
			log.Info("pipeline: stage complete",
				zap.String("stage", name),
				zap.Int64("duration_ms", time.Since(t).Milliseconds()),
			)
			return nil
		})
	}

	stage("neighbors", func() error {
		stats, err := spatial.NearestNeighbors(points)
		if err != nil {
			return err
		}
		sum := spatial.Summarize(stats, p.Thresholds)
		mu.Lock()
		res.Neighbors, res.NeighborSummary = stats, sum
		mu.Unlock()
		return nil
	})

	stage("coverage", func() error {
		region, err := spatial.Coverage(points, p.RadiusM)
		if err != nil {
			return err
		}
		aoi, err := spatial.AreaOfInterest(points, p.MarginM)
		if err != nil {
			return err
		}
		kept, small, err := spatial.PartitionGaps(region, aoi, p.MinGapAreaM2)
		if err != nil {
			return err
		}
		mu.Lock()
		res.Coverage, res.AreaOfInterest, res.Gaps, res.SmallGaps = region, aoi, kept, small
		mu.Unlock()
		return nil
	})

	stage("clusters", func() error {
		a, err := spatial.ClusterDetail(points, p.EpsilonM, p.MinSamples)
		if err != nil {
			return err
		}
		mu.Lock()
		res.Clusters = a
		mu.Unlock()
		return nil
	})

	if p.DensityGrid > 0 {
		stage("density", func() error {
			d, err := spatial.Density(points, p.DensityGrid)
			if err != nil {
				return err
			}
			mu.Lock()
			res.Density = d
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run")
	}

	res.Duration = time.Since(start)
	log.Info("pipeline: analysis complete",
		zap.Int("gaps", len(res.Gaps)),
		zap.Int("clusters", len(spatial.Summaries(res.Clusters))),
		zap.Int64("duration_ms", res.Duration.Milliseconds()),
	)
	return res, nil
}

// Layers returns the exportable outputs.
func (r *Result) Layers() *export.Layers {
	return &export.Layers{
		Cameras:   r.Dataset.Cameras(),
		Neighbors: r.Neighbors,
		Clusters:  r.Clusters,
		Coverage:  r.Coverage,
		Gaps:      r.Gaps,
	}
}

// Report builds the aggregated report stamped with now.
func (r *Result) Report(now time.Time) *report.Report {
	nb := r.NeighborSummary
	rep := &report.Report{
		GeneratedAt: now,
		Source:      r.Params.Source,
		Dataset:     r.Summary,
		Neighbors:   &nb,
		Clusters:    report.NewClusters(r.Clusters, r.Params.EpsilonM, r.Params.MinSamples),
	}
	if r.Coverage != nil {
		var aoi float64
		if r.AreaOfInterest != nil {
			aoi = r.AreaOfInterest.Area()
		}
		rep.Coverage = report.NewCoverage(r.Coverage, r.Gaps, r.SmallGaps, aoi, r.Params.MinGapAreaM2)
	}
	return rep
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/camera-coverage/internal/camera"
	"github.com/sells-group/camera-coverage/internal/fetcher"
	"github.com/sells-group/camera-coverage/internal/model"
	"github.com/sells-group/camera-coverage/internal/pipeline"
	"github.com/sells-group/camera-coverage/internal/spatial"
)

// now is the reference clock for date validation and report stamps.
var now = time.Now

var inputPath string

// analysis flag overrides; applied only when set on the command line.
var (
	flagRadius      float64
	flagEpsilon     float64
	flagMinSamples  int
	flagMinGapArea  float64
	flagMargin      float64
	flagDensityGrid int
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&inputPath, "input", "i", "", "camera CSV file or http(s) URL (- for stdin)")
	pf.Float64Var(&flagRadius, "radius", 0, "coverage radius in meters (default from config)")
	pf.Float64Var(&flagEpsilon, "epsilon", 0, "cluster neighborhood radius in meters (default from config)")
	pf.IntVar(&flagMinSamples, "min-samples", 0, "minimum cluster neighborhood size (default from config)")
	pf.Float64Var(&flagMinGapArea, "min-gap-area", 0, "minimum reported gap area in square meters (default from config)")
	pf.Float64Var(&flagMargin, "margin", 0, "area-of-interest margin in meters (default from config)")
	pf.IntVar(&flagDensityGrid, "density-grid", 0, "density grid size, 0 to skip (default from config)")
}

// analysisParams merges config defaults with any changed flags.
func analysisParams(cmd *cobra.Command) (pipeline.Params, error) {
	a := cfg.Analysis
	flags := cmd.Flags()
	if flags.Changed("radius") {
		a.RadiusM = flagRadius
	}
	if flags.Changed("epsilon") {
		a.EpsilonM = flagEpsilon
	}
	if flags.Changed("min-samples") {
		a.MinSamples = flagMinSamples
	}
	if flags.Changed("min-gap-area") {
		a.MinGapAreaM2 = flagMinGapArea
	}
	if flags.Changed("margin") {
		a.MarginM = flagMargin
	}
	if flags.Changed("density-grid") {
		a.DensityGrid = flagDensityGrid
	}

	merged := *cfg
	merged.Analysis = a
	if err := merged.Validate("analysis"); err != nil {
		return pipeline.Params{}, err
	}

	return pipeline.Params{
		Source:       inputPath,
		RadiusM:      a.RadiusM,
		EpsilonM:     a.EpsilonM,
		MinSamples:   a.MinSamples,
		MinGapAreaM2: a.MinGapAreaM2,
		MarginM:      a.MarginM,
		DensityGrid:  a.DensityGrid,
		Thresholds: spatial.NeighborThresholds{
			IsolatedM:  a.IsolatedM,
			ClusteredM: a.ClusteredM,
		},
	}, nil
}

func openInput(ctx context.Context) (io.ReadCloser, error) {
	if inputPath == "" {
		return nil, eris.New("an input CSV is required (--input)")
	}
	var opts fetcher.Options
	if cfg != nil {
		opts = fetcher.Options{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
		}
		if cfg.Fetch.RatePerSec > 0 {
			opts.Limiter = rate.NewLimiter(rate.Limit(cfg.Fetch.RatePerSec), 1)
		}
	}
	return fetcher.Open(ctx, inputPath, opts)
}

func loadTable(ctx context.Context) (*camera.Table, error) {
	in, err := openInput(ctx)
	if err != nil {
		return nil, err
	}
	defer in.Close() //nolint:errcheck
	return camera.Load(ctx, in)
}

// loadDataset reads and validates the input. Validation errors are printed
// to stderr and abort; warnings are logged.
func loadDataset(ctx context.Context) (model.Dataset, error) {
	tbl, err := loadTable(ctx)
	if err != nil {
		return model.Dataset{}, err
	}

	rep := camera.Validate(tbl, now())
	for _, w := range rep.Warnings {
		zap.L().Warn("validation warning", zap.String("input", inputPath), zap.String("warning", w))
	}
	if !rep.OK() {
		writeValidation(os.Stderr, rep)
		return model.Dataset{}, eris.Wrapf(camera.ErrInvalidRecord, "%s failed validation with %d errors", inputPath, len(rep.Errors))
	}

	ds, err := camera.NewDataset(tbl, now())
	if err != nil {
		return model.Dataset{}, err
	}
	zap.L().Info("dataset loaded", zap.String("input", inputPath), zap.Int("cameras", ds.Len()))
	return ds, nil
}

func loadProjected(ctx context.Context) (model.Dataset, []spatial.ProjectedPoint, error) {
	ds, err := loadDataset(ctx)
	if err != nil {
		return model.Dataset{}, nil, err
	}
	pts, err := spatial.Project(ds)
	if err != nil {
		return model.Dataset{}, nil, err
	}
	return ds, pts, nil
}

func writeValidation(w io.Writer, rep *camera.ValidationReport) {
	for _, s := range rep.Passed {
		_, _ = fmt.Fprintf(w, "  [PASS] %s\n", s)
	}
	for _, s := range rep.Warnings {
		_, _ = fmt.Fprintf(w, "  [WARN] %s\n", s)
	}
	for _, s := range rep.Errors {
		_, _ = fmt.Fprintf(w, "  [FAIL] %s\n", s)
	}
	_, _ = fmt.Fprintf(w, "\nPassed: %d  Warnings: %d  Errors: %d\n%s\n",
		len(rep.Passed), len(rep.Warnings), len(rep.Errors), rep.Verdict())
}

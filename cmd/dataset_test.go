package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/camera-coverage/internal/camera"
	"github.com/sells-group/camera-coverage/internal/config"
)

const midtownCSV = `camera_id,location_name,latitude,longitude,status,installation_date
CAM-001,Times Square,40.7580,-73.9855,Active,2021-03-15
CAM-002,Bryant Park,40.7536,-73.9832,Active,2020-06-01
CAM-003,Grand Central,40.7527,-73.9772,Maintenance,2019-11-20
CAM-004,Penn Station,40.7506,-73.9935,Inactive,2022-01-10
`

func withInput(t *testing.T, data string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cameras.csv")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	prevInput, prevNow := inputPath, now
	inputPath = path
	now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { inputPath, now = prevInput, prevNow })
}

func withConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Analysis: config.AnalysisConfig{
			RadiusM:     50,
			EpsilonM:    500,
			MinSamples:  3,
			MarginM:     152.4,
			DensityGrid: 100,
			IsolatedM:   1000,
			ClusteredM:  200,
		},
		Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: "camera.db"},
	}
	t.Cleanup(func() { cfg = prev })
}

func TestLoadDataset(t *testing.T) {
	withInput(t, midtownCSV)

	ds, err := loadDataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	c, ok := ds.Get("CAM-003")
	require.True(t, ok)
	assert.Equal(t, "Grand Central", c.Name)
}

func TestLoadDataset_ValidationFails(t *testing.T) {
	withInput(t, midtownCSV+"CAM-001,Duplicate Camera,40.7000,-73.9000,Active,2021-01-01\n")

	_, err := loadDataset(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, camera.ErrInvalidRecord)
}

func TestLoadDataset_NoInput(t *testing.T) {
	prev := inputPath
	inputPath = ""
	t.Cleanup(func() { inputPath = prev })

	_, err := loadDataset(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--input")
}

func paramsCommand() *cobra.Command {
	c := &cobra.Command{}
	f := c.Flags()
	f.Float64Var(&flagRadius, "radius", 0, "")
	f.Float64Var(&flagEpsilon, "epsilon", 0, "")
	f.IntVar(&flagMinSamples, "min-samples", 0, "")
	f.Float64Var(&flagMinGapArea, "min-gap-area", 0, "")
	f.Float64Var(&flagMargin, "margin", 0, "")
	f.IntVar(&flagDensityGrid, "density-grid", 0, "")
	return c
}

func TestAnalysisParams_Defaults(t *testing.T) {
	withConfig(t)

	p, err := analysisParams(paramsCommand())
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.RadiusM)
	assert.Equal(t, 500.0, p.EpsilonM)
	assert.Equal(t, 3, p.MinSamples)
	assert.Equal(t, 152.4, p.MarginM)
	assert.Equal(t, 100, p.DensityGrid)
	assert.Equal(t, 1000.0, p.Thresholds.IsolatedM)
	assert.Equal(t, 200.0, p.Thresholds.ClusteredM)
}

func TestAnalysisParams_FlagsOverride(t *testing.T) {
	withConfig(t)

	c := paramsCommand()
	require.NoError(t, c.Flags().Set("radius", "75"))
	require.NoError(t, c.Flags().Set("min-samples", "5"))
	require.NoError(t, c.Flags().Set("density-grid", "0"))

	p, err := analysisParams(c)
	require.NoError(t, err)
	assert.Equal(t, 75.0, p.RadiusM)
	assert.Equal(t, 5, p.MinSamples)
	assert.Equal(t, 0, p.DensityGrid)
	assert.Equal(t, 500.0, p.EpsilonM)
	assert.Equal(t, 50.0, cfg.Analysis.RadiusM, "config must not be mutated")
}

func TestAnalysisParams_Invalid(t *testing.T) {
	withConfig(t)

	c := paramsCommand()
	require.NoError(t, c.Flags().Set("epsilon", "-5"))

	_, err := analysisParams(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.epsilon_m")
}

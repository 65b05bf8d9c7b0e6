package model

import (
	"encoding/json"
	"time"
)

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunParams records the scalar inputs of an analysis run.
type RunParams struct {
	Source       string  `json:"source" yaml:"source"`
	Cameras      int     `json:"cameras" yaml:"cameras"`
	RadiusM      float64 `json:"radius_m" yaml:"radius_m"`
	EpsilonM     float64 `json:"epsilon_m" yaml:"epsilon_m"`
	MinSamples   int     `json:"min_samples" yaml:"min_samples"`
	MinGapAreaM2 float64 `json:"min_gap_area_m2" yaml:"min_gap_area_m2"`
	MarginM      float64 `json:"margin_m" yaml:"margin_m"`
	DensityGrid  int     `json:"density_grid" yaml:"density_grid"`
}

// Run is a persisted record of one analysis run.
type Run struct {
	ID        string          `json:"id"`
	Status    RunStatus       `json:"status"`
	Params    RunParams       `json:"params"`
	Summary   json.RawMessage `json:"summary,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

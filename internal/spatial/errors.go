// Package spatial implements the planar analysis engines: projection,
// nearest-neighbor distances, buffer coverage, coverage gaps, density-based
// clustering and kernel density.
package spatial

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/camera-coverage/internal/model"
)

var (
	// ErrInvalidCoordinate marks a point outside the supported NYC bounds.
	ErrInvalidCoordinate = model.ErrInvalidCoordinate
	// ErrInvalidParameter marks a non-positive radius, epsilon or min_samples,
	// or a negative minimum gap area.
	ErrInvalidParameter = eris.New("invalid parameter")
	// ErrEmptyDataset marks too few points for the requested computation.
	ErrEmptyDataset = eris.New("insufficient points")
)

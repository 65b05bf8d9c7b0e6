// Package model defines the camera records and run metadata shared across
// the analysis packages.
package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// ErrInvalidCoordinate is returned when a latitude/longitude pair falls
// outside the supported NYC bounding box.
var ErrInvalidCoordinate = eris.New("invalid coordinate")

// Status is the operational state of a camera.
type Status string

const (
	StatusActive      Status = "Active"
	StatusMaintenance Status = "Maintenance"
	StatusInactive    Status = "Inactive"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusActive, StatusMaintenance, StatusInactive}

// ParseStatus returns the Status matching s exactly.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Camera is a single validated camera location.
type Camera struct {
	ID          string    `json:"camera_id" yaml:"camera_id"`
	Name        string    `json:"location_name" yaml:"location_name"`
	Lat         float64   `json:"latitude" yaml:"latitude"`
	Lon         float64   `json:"longitude" yaml:"longitude"`
	Status      Status    `json:"status" yaml:"status"`
	InstalledOn time.Time `json:"installation_date" yaml:"installation_date"`
}

// BBox is a geographic bounding box in degrees.
type BBox struct {
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
	MinLon float64 `json:"min_lon" yaml:"min_lon"`
	MaxLon float64 `json:"max_lon" yaml:"max_lon"`
}

// NYCBounds is the accepted extent for camera coordinates.
var NYCBounds = BBox{
	MinLat: 40.4774,
	MaxLat: 40.9176,
	MinLon: -74.2591,
	MaxLon: -73.7004,
}

// Contains reports whether lat/lon lies inside the box, edges included.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Center returns the midpoint of the box.
func (b BBox) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

// CheckCoordinate returns ErrInvalidCoordinate when lat/lon is outside NYCBounds.
func CheckCoordinate(lat, lon float64) error {
	if !NYCBounds.Contains(lat, lon) {
		return eris.Wrapf(ErrInvalidCoordinate, "lat %.6f lon %.6f outside NYC bounds", lat, lon)
	}
	return nil
}

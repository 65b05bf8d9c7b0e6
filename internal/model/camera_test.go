package model

import (
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"Active", StatusActive, true},
		{"Maintenance", StatusMaintenance, true},
		{"Inactive", StatusInactive, true},
		{"active", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseStatus(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBBoxContains(t *testing.T) {
	t.Parallel()

	assert.True(t, NYCBounds.Contains(40.7128, -74.0060))
	assert.True(t, NYCBounds.Contains(40.4774, -74.2591)) // corner is inclusive
	assert.False(t, NYCBounds.Contains(40.4773, -74.0))
	assert.False(t, NYCBounds.Contains(40.7, -73.7))
}

func TestCheckCoordinate(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckCoordinate(40.75, -73.98))

	err := CheckCoordinate(34.05, -118.24)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrInvalidCoordinate))
}

func TestDataset_IsolatedFromInput(t *testing.T) {
	t.Parallel()

	in := []Camera{
		{ID: "CAM-001", Lat: 40.70, Lon: -74.00, Status: StatusActive, InstalledOn: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "CAM-002", Lat: 40.80, Lon: -73.90, Status: StatusInactive},
	}
	ds := NewDataset(in)
	in[0].ID = "mutated"

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "CAM-001", ds.At(0).ID)

	out := ds.Cameras()
	out[1].ID = "mutated"
	assert.Equal(t, "CAM-002", ds.At(1).ID)

	c, ok := ds.Get("CAM-002")
	require.True(t, ok)
	assert.Equal(t, StatusInactive, c.Status)

	_, ok = ds.Get("missing")
	assert.False(t, ok)
}

func TestDataset_Extent(t *testing.T) {
	t.Parallel()

	_, ok := NewDataset(nil).Extent()
	assert.False(t, ok)

	ds := NewDataset([]Camera{
		{ID: "a", Lat: 40.70, Lon: -74.00},
		{ID: "b", Lat: 40.80, Lon: -73.90},
		{ID: "c", Lat: 40.60, Lon: -73.95},
	})
	b, ok := ds.Extent()
	require.True(t, ok)
	assert.Equal(t, BBox{MinLat: 40.60, MaxLat: 40.80, MinLon: -74.00, MaxLon: -73.90}, b)

	counts := ds.CountByStatus()
	assert.Equal(t, 3, counts[""])
}

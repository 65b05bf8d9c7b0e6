package model

// Dataset is an immutable snapshot of camera records. It is passed by value
// into each analysis step; none of its accessors expose internal storage.
type Dataset struct {
	cameras []Camera
	byID    map[string]int
}

// NewDataset copies cameras into a Dataset. Ids are expected to be unique;
// when they are not, Get resolves to the first occurrence.
func NewDataset(cameras []Camera) Dataset {
	cp := make([]Camera, len(cameras))
	copy(cp, cameras)
	byID := make(map[string]int, len(cp))
	for i, c := range cp {
		if _, ok := byID[c.ID]; !ok {
			byID[c.ID] = i
		}
	}
	return Dataset{cameras: cp, byID: byID}
}

// Len returns the number of cameras.
func (d Dataset) Len() int { return len(d.cameras) }

// At returns the camera at position i.
func (d Dataset) At(i int) Camera { return d.cameras[i] }

// Cameras returns a copy of all cameras in load order.
func (d Dataset) Cameras() []Camera {
	cp := make([]Camera, len(d.cameras))
	copy(cp, d.cameras)
	return cp
}

// Get looks up a camera by id.
func (d Dataset) Get(id string) (Camera, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Camera{}, false
	}
	return d.cameras[i], true
}

// Extent returns the bounding box of all camera coordinates.
func (d Dataset) Extent() (BBox, bool) {
	if len(d.cameras) == 0 {
		return BBox{}, false
	}
	b := BBox{
		MinLat: d.cameras[0].Lat, MaxLat: d.cameras[0].Lat,
		MinLon: d.cameras[0].Lon, MaxLon: d.cameras[0].Lon,
	}
	for _, c := range d.cameras[1:] {
		b.MinLat = min(b.MinLat, c.Lat)
		b.MaxLat = max(b.MaxLat, c.Lat)
		b.MinLon = min(b.MinLon, c.Lon)
		b.MaxLon = max(b.MaxLon, c.Lon)
	}
	return b, true
}

// CountByStatus tallies cameras per status.
func (d Dataset) CountByStatus() map[Status]int {
	out := make(map[Status]int, len(Statuses))
	for _, c := range d.cameras {
		out[c.Status]++
	}
	return out
}

package camera

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"github.com/sells-group/camera-coverage/internal/model"
)

// ErrInvalidRecord is returned when a row cannot become a Camera.
var ErrInvalidRecord = eris.New("invalid camera record")

var validate = validator.New()

// NewDataset converts every record into a Camera and fails on the first
// record that breaks a dataset invariant. Out-of-bounds coordinates wrap
// model.ErrInvalidCoordinate; every other failure wraps ErrInvalidRecord.
func NewDataset(t *Table, now time.Time) (model.Dataset, error) {
	if t == nil || len(t.Records) == 0 {
		return model.Dataset{}, eris.Wrap(ErrInvalidRecord, "camera: dataset is empty")
	}

	today := dateOf(now)
	seen := make(map[string]int, len(t.Records))
	cams := make([]model.Camera, 0, len(t.Records))
	for _, rec := range t.Records {
		cam, err := rec.Camera()
		if err != nil {
			return model.Dataset{}, err
		}
		if line, dup := seen[cam.ID]; dup {
			return model.Dataset{}, eris.Wrapf(ErrInvalidRecord, "camera: line %d: duplicate camera_id %s (first on line %d)", rec.Line, cam.ID, line)
		}
		seen[cam.ID] = rec.Line
		if cam.InstalledOn.After(today) {
			return model.Dataset{}, eris.Wrapf(ErrInvalidRecord, "camera: line %d: %s installed in the future (%s)", rec.Line, cam.ID, rec.InstallationDate)
		}
		cams = append(cams, cam)
	}
	return model.NewDataset(cams), nil
}

// Camera parses a single record. Field format is checked with struct tags
// before the NYC bounds check.
func (r Record) Camera() (model.Camera, error) {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if eris.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return model.Camera{}, eris.Wrapf(ErrInvalidRecord, "camera: line %d: field %s failed %q check (value %q)", r.Line, fe.Field(), fe.Tag(), fe.Value())
		}
		return model.Camera{}, eris.Wrapf(ErrInvalidRecord, "camera: line %d: %v", r.Line, err)
	}

	lat, err := strconv.ParseFloat(r.Latitude, 64)
	if err != nil {
		return model.Camera{}, eris.Wrapf(ErrInvalidRecord, "camera: line %d: latitude %q", r.Line, r.Latitude)
	}
	lon, err := strconv.ParseFloat(r.Longitude, 64)
	if err != nil {
		return model.Camera{}, eris.Wrapf(ErrInvalidRecord, "camera: line %d: longitude %q", r.Line, r.Longitude)
	}
	if err := model.CheckCoordinate(lat, lon); err != nil {
		return model.Camera{}, eris.Wrapf(err, "camera: line %d: %s", r.Line, r.CameraID)
	}
	installed, err := time.Parse(DateLayout, r.InstallationDate)
	if err != nil {
		return model.Camera{}, eris.Wrapf(ErrInvalidRecord, "camera: line %d: installation_date %q", r.Line, r.InstallationDate)
	}
	status, _ := model.ParseStatus(r.Status)

	return model.Camera{
		ID:          r.CameraID,
		Name:        r.LocationName,
		Lat:         lat,
		Lon:         lon,
		Status:      status,
		InstalledOn: installed,
	}, nil
}

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/camera-coverage/internal/analysis"
	"github.com/sells-group/camera-coverage/internal/export"
	"github.com/sells-group/camera-coverage/internal/model"
	"github.com/sells-group/camera-coverage/internal/report"
	"github.com/sells-group/camera-coverage/internal/spatial"
	"github.com/sells-group/camera-coverage/internal/store"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"cameras": s.result.Dataset.Len(),
	})
}

func (s *Server) summary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.result.RunSummary())
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	rep := s.result.Report(s.now())
	switch r.URL.Query().Get("format") {
	case "", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := report.WriteText(w, rep); err != nil {
			zap.L().Warn("api: write report", zap.Error(err))
		}
	case "yaml":
		w.Header().Set("Content-Type", "application/yaml")
		if err := report.WriteYAML(w, rep); err != nil {
			zap.L().Warn("api: write report", zap.Error(err))
		}
	default:
		writeError(w, http.StatusBadRequest, "format must be text or yaml")
	}
}

func (s *Server) cameras(w http.ResponseWriter, r *http.Request) {
	fc := export.CamerasGeoJSON(s.layers)
	if st := r.URL.Query().Get("status"); st != "" {
		status, ok := model.ParseStatus(st)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown status "+strconv.Quote(st))
			return
		}
		fc = filterStatus(fc, status)
	}
	writeJSON(w, http.StatusOK, fc)
}

func filterStatus(fc *geojson.FeatureCollection, status model.Status) *geojson.FeatureCollection {
	out := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(fc.Features))}
	for _, f := range fc.Features {
		if f.Properties["status"] == string(status) {
			out.Features = append(out.Features, f)
		}
	}
	return out
}

type cameraDetail struct {
	model.Camera
	Borough string                `json:"borough"`
	Nearest *spatial.NeighborStat `json:"nearest,omitempty"`
	Cluster *spatial.Assignment   `json:"cluster,omitempty"`
}

func (s *Server) camera(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := s.result.Dataset.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "camera not found")
		return
	}
	d := cameraDetail{Camera: c, Borough: analysis.AssignBorough(c.Lat, c.Lon)}
	for i := range s.result.Neighbors {
		if s.result.Neighbors[i].PointID == id {
			d.Nearest = &s.result.Neighbors[i]
			break
		}
	}
	for i := range s.result.Clusters {
		if s.result.Clusters[i].PointID == id {
			d.Cluster = &s.result.Clusters[i]
			break
		}
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) neighbors(w http.ResponseWriter, r *http.Request) {
	stats := s.result.Neighbors
	if v := r.URL.Query().Get("isolated_m"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "isolated_m must be a non-negative number")
			return
		}
		stats = spatial.Isolated(stats, limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":   s.result.NeighborSummary,
		"neighbors": stats,
	})
}

func (s *Server) clusters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"epsilon_m":   s.result.Params.EpsilonM,
		"min_samples": s.result.Params.MinSamples,
		"clusters":    spatial.Summaries(s.result.Clusters),
		"noise":       spatial.NoiseCount(s.result.Clusters),
		"assignments": s.result.Clusters,
	})
}

func (s *Server) coverage(w http.ResponseWriter, _ *http.Request) {
	if s.result.Coverage == nil {
		writeError(w, http.StatusNotFound, "coverage not computed")
		return
	}
	fc, err := export.CoverageGeoJSON(s.result.Coverage)
	if err != nil {
		s.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) gaps(w http.ResponseWriter, _ *http.Request) {
	fc, err := export.GapsGeoJSON(s.result.Gaps)
	if err != nil {
		s.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) density(w http.ResponseWriter, _ *http.Request) {
	if s.result.Density == nil {
		writeError(w, http.StatusNotFound, "density not computed")
		return
	}
	writeJSON(w, http.StatusOK, s.result.Density)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "run history disabled")
		return
	}
	q := r.URL.Query()
	f := store.RunFilter{
		Status: model.RunStatus(q.Get("status")),
		Source: q.Get("source"),
	}
	var err error
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	runs, err := s.runs.ListRuns(r.Context(), f)
	if err != nil {
		s.internal(w, err)
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, "run history disabled")
		return
	}
	run, err := s.runs.GetRun(r.Context(), chi.URLParam(r, "id"))
	if eris.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.internal(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) internal(w http.ResponseWriter, err error) {
	zap.L().Error("api: request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, eris.Errorf("api: invalid integer %q", v)
	}
	return n, nil
}

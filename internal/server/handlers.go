package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/psdatlas/pkg/atlas"
	"github.com/matzehuels/psdatlas/pkg/buildinfo"
	"github.com/matzehuels/psdatlas/pkg/cache"
	apperr "github.com/matzehuels/psdatlas/pkg/errors"
	"github.com/matzehuels/psdatlas/pkg/jobs"
	"github.com/matzehuels/psdatlas/pkg/psdb"
)

// =============================================================================
// Request Types
// =============================================================================

type packRequest struct {
	Regions []atlas.LayerRegion `json:"regions"`
	Padding *int                `json:"padding,omitempty"`
}

func (p packRequest) padding() int {
	if p.Padding == nil {
		return atlas.DefaultPadding
	}
	return *p.Padding
}

type serializeRequest struct {
	Regions          []atlas.PackedRegion  `json:"regions"`
	CanvasWidth      int                   `json:"canvas_width"`
	CanvasHeight     int                   `json:"canvas_height"`
	CoordinateSystem psdb.CoordinateSystem `json:"coordinate_system"`
}

type convertRequest struct {
	Regions          []atlas.LayerRegion   `json:"regions"`
	Padding          *int                  `json:"padding,omitempty"`
	CanvasWidth      int                   `json:"canvas_width"`
	CanvasHeight     int                   `json:"canvas_height"`
	CoordinateSystem psdb.CoordinateSystem `json:"coordinate_system"`
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

type jobsResponse struct {
	Jobs []*jobs.Job `json:"jobs"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	layout, err := atlas.Pack(req.Regions, req.padding())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (s *Server) handleSerialize(w http.ResponseWriter, r *http.Request) {
	var req serializeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	cw, ch := req.CanvasWidth, req.CanvasHeight
	if cw == 0 || ch == 0 {
		ew, eh := packedExtent(req.Regions)
		cw, ch = orDefault(cw, ew), orDefault(ch, eh)
	}
	data, err := psdb.Serialize(req.Regions, cw, ch, req.CoordinateSystem)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeBinary(w, data)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req convertRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, r, err)
		return
	}
	pr := packRequest{Regions: req.Regions, Padding: req.Padding}
	layout, err := atlas.Pack(req.Regions, pr.padding())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	cw, ch := req.CanvasWidth, req.CanvasHeight
	if cw == 0 || ch == 0 {
		ew, eh := regionExtent(req.Regions)
		cw, ch = orDefault(cw, ew), orDefault(ch, eh)
	}
	data, err := psdb.Serialize(layout.Regions, cw, ch, req.CoordinateSystem)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	if id := s.record(r, req, layout, time.Since(start)); id != "" {
		w.Header().Set("X-Job-ID", id)
	}
	w.Header().Set("X-Atlas-Width", strconv.Itoa(layout.Width))
	w.Header().Set("X-Atlas-Height", strconv.Itoa(layout.Height))
	writeBinary(w, data)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := jobs.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeErr(w, r, apperr.New(apperr.ErrCodeInvalidInput, "limit must be a positive integer, got %q", v))
			return
		}
		limit = n
	}
	list, err := s.jobs.List(r.Context(), limit)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if list == nil {
		list = []*jobs.Job{}
	}
	writeJSON(w, http.StatusOK, jobsResponse{Jobs: list})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := jobs.ValidateID(id); err != nil {
		s.writeErr(w, r, err)
		return
	}
	job, err := s.jobs.Get(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// =============================================================================
// Helpers
// =============================================================================

// record stores a job for a finished conversion. Store failures are logged
// and never fail the request.
func (s *Server) record(r *http.Request, req convertRequest, layout atlas.Layout, d time.Duration) string {
	if _, null := s.jobs.(jobs.NullStore); null {
		return ""
	}
	job := jobs.New("http")
	if data, err := json.Marshal(req.Regions); err == nil {
		job.SourceHash = cache.Hash(data)
	}
	job.Regions = len(layout.Regions)
	job.AtlasWidth = layout.Width
	job.AtlasHeight = layout.Height
	job.Padding = layout.Padding
	job.CoordinateSystem = req.CoordinateSystem.String()
	job.Formats = []string{"bin"}
	job.Duration = d

	if err := s.jobs.Record(r.Context(), job); err != nil {
		s.logger.Warn("record job failed", "err", err)
		return ""
	}
	return job.ID
}

// regionExtent returns the document size spanned by the regions' source
// rectangles.
func regionExtent(regions []atlas.LayerRegion) (int, int) {
	w, h := 0, 0
	for _, r := range regions {
		w = max(w, r.OriginalX+r.Width)
		h = max(h, r.OriginalY+r.Height)
	}
	return w, h
}

func packedExtent(regions []atlas.PackedRegion) (int, int) {
	w, h := 0, 0
	for _, r := range regions {
		w = max(w, r.OriginalX+r.Width)
		h = max(h, r.OriginalY+r.Height)
	}
	return w, h
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

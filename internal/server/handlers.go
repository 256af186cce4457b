package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/piwi3910/TabBox/internal/cache"
	"github.com/piwi3910/TabBox/internal/engine"
	"github.com/piwi3910/TabBox/internal/export"
	"github.com/piwi3910/TabBox/internal/gcode"
	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/logger"
	"github.com/piwi3910/TabBox/internal/model"
)

// BoxRequest is the body of every /v1/box call. Settings start from
// model.SettingsFor(Design); fields the client sends override them.
type BoxRequest struct {
	Design   model.Design          `json:"design"`
	Settings *model.OutputSettings `json:"settings,omitempty"`
}

type boxPayload struct {
	Design   model.Design    `json:"design"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

type BoxResponse struct {
	Design string                    `json:"design"`
	Tabs   map[string]engine.TabSpec `json:"tabs"`
	Min    geometry.Point            `json:"min"`
	Max    geometry.Point            `json:"max"`
	Panels []PanelResponse           `json:"panels"`
}

type PanelResponse struct {
	export.PanelSummary
	Outline []geometry.Point   `json:"outline"`
	Lines   []geometry.Segment `json:"lines"`
	Cutouts []engine.Cutout    `json:"cutouts"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type renderer struct {
	contentType string
	ext         string
	render      func(box *engine.Box, design string, settings model.OutputSettings) ([]byte, error)
}

var renderers = map[string]renderer{
	"json":  {"application/json", "json", renderJSON},
	"svg":   {"image/svg+xml", "svg", renderSVG},
	"dxf":   {"application/dxf", "dxf", renderDXF},
	"pdf":   {"application/pdf", "pdf", renderPDF},
	"gcode": {"text/plain; charset=utf-8", "nc", renderGCode},
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleBox(w http.ResponseWriter, r *http.Request) {
	s.serveFormat(w, r, "json")
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	s.serveFormat(w, r, format)
}

// decodeSettings overlays the client's settings object on the defaults for d.
func decodeSettings(d model.Design, raw json.RawMessage) (model.OutputSettings, error) {
	settings := model.SettingsFor(d)
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return settings, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		return model.OutputSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

func (s *Server) serveFormat(w http.ResponseWriter, r *http.Request, format string) {
	rd, ok := renderers[format]
	if !ok {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("unknown format %q", chi.URLParam(r, "format")))
		return
	}

	var req boxPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	settings, err := decodeSettings(req.Design, req.Settings)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx := logger.WithFormat(logger.WithDesign(r.Context(), req.Design.Name), format)
	key, err := cache.Key(format, req.Design, settings)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	start := time.Now()
	body, hit, err := s.cache.GetOrRender(ctx, key, func() ([]byte, error) {
		box, err := engine.Build(req.Design)
		s.metrics.ObserveBuild(err)
		if err != nil {
			return nil, err
		}
		return rd.render(box, req.Design.Name, settings)
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrInvalidConfiguration) || errors.Is(err, geometry.ErrInvalidArgument) ||
			errors.Is(err, gcode.ErrInvalidSettings) {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, r.WithContext(ctx), status, err)
		return
	}
	if !hit {
		s.metrics.ObserveRender(format, time.Since(start))
	}

	l := logger.FromContext(ctx, s.log)
	l.Info().Bool("cache_hit", hit).Int("bytes", len(body)).Dur("elapsed", time.Since(start)).Msg("box rendered")

	w.Header().Set("Content-Type", rd.contentType)
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if format != "json" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName(req.Design.Name, rd.ext)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	l := logger.FromContext(r.Context(), s.log)
	level := zerolog.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zerolog.ErrorLevel
	}
	l.WithLevel(level).Err(err).Int("status", status).Msg("request failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), RequestID: logger.RequestID(r.Context())})
}

func fileName(design, ext string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, design)
	if base == "" {
		base = "box"
	}
	return base + "." + ext
}

// Describe builds the JSON view of a box. Each panel carries its summary,
// traced outline, lines and placed cutouts. Construction lines are included
// only when asked for.
func Describe(box *engine.Box, design string, construction bool) (BoxResponse, error) {
	lo, hi := box.Extents()
	resp := BoxResponse{Design: design, Tabs: box.Tabs(), Min: lo, Max: hi}
	sides := box.Sides()
	for _, sum := range export.Summarize(box) {
		side := sides[sum.Name]
		outline, err := export.TraceOutline(side)
		if err != nil {
			return BoxResponse{}, fmt.Errorf("panel %s: %w", sum.Name, err)
		}
		resp.Panels = append(resp.Panels, PanelResponse{
			PanelSummary: sum,
			Outline:      outline,
			Lines:        panelLines(side, construction),
			Cutouts:      side.Cutouts(),
		})
	}
	return resp, nil
}

func panelLines(side *engine.Side, construction bool) []geometry.Segment {
	if construction {
		return side.AllLines()
	}
	return side.RealLines()
}

func renderJSON(box *engine.Box, design string, settings model.OutputSettings) ([]byte, error) {
	resp, err := Describe(box, design, settings.DrawConstruction)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

func renderSVG(box *engine.Box, _ string, settings model.OutputSettings) ([]byte, error) {
	var buf bytes.Buffer
	if err := export.WriteSVG(&buf, box, settings); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderGCode(box *engine.Box, _ string, settings model.OutputSettings) ([]byte, error) {
	code, err := gcode.New(settings).GenerateBox(box)
	if err != nil {
		return nil, err
	}
	return []byte(code), nil
}

func renderDXF(box *engine.Box, _ string, settings model.OutputSettings) ([]byte, error) {
	return viaTempFile("box.dxf", func(path string) error { return export.ExportDXF(path, box, settings) })
}

func renderPDF(box *engine.Box, _ string, settings model.OutputSettings) ([]byte, error) {
	return viaTempFile("box.pdf", func(path string) error { return export.ExportPDF(path, box, settings) })
}

// viaTempFile runs a file-based exporter in a scratch directory and returns
// what it wrote.
func viaTempFile(name string, write func(path string) error) ([]byte, error) {
	dir, err := os.MkdirTemp("", "tabbox-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)
	if err := write(path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

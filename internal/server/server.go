// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/terrrybug/pyninja/pkg/advisory"
	"github.com/terrrybug/pyninja/pkg/analysis"
	"github.com/terrrybug/pyninja/pkg/cache"
	"github.com/terrrybug/pyninja/pkg/errors"
	"github.com/terrrybug/pyninja/pkg/manifest"
	"github.com/terrrybug/pyninja/pkg/registry"
	"github.com/terrrybug/pyninja/pkg/report"
)

// AnalyzeRequest is the POST /v1/analyze request body. Requirements are
// given directly; the server does not read manifests from disk.
type AnalyzeRequest struct {
	Requirements []RequirementSpec `json:"requirements"`
	TargetPython string            `json:"target_python"`
	Security     bool              `json:"security"`
	Performance  bool              `json:"performance"`
}

// RequirementSpec names one dependency and its constraint ("" means any).
type RequirementSpec struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint"`
}

// Server wires the analysis pipeline behind an HTTP API.
type Server struct {
	logger     *log.Logger
	fetcher    analysis.MetadataFetcher
	advisories analysis.AdvisoryChecker
}

// New creates a Server using the given response cache backend.
func New(backend cache.Cache, logger *log.Logger) *Server {
	return &Server{
		logger:     logger,
		fetcher:    registry.NewClient(backend),
		advisories: advisory.NewClient(backend),
	}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/analyze", s.handleAnalyze)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Requirements) == 0 {
		writeError(w, http.StatusBadRequest, "requirements must not be empty")
		return
	}
	if req.TargetPython == "" {
		req.TargetPython = "3.11"
	}
	major, minor, err := errors.ParseTargetPython(req.TargetPython)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.UserMessage(err))
		return
	}

	reqs := make([]manifest.Requirement, 0, len(req.Requirements))
	pins := pinnedVersions{}
	for _, spec := range req.Requirements {
		if err := errors.ValidatePythonPackageName(spec.Name); err != nil {
			writeError(w, http.StatusBadRequest, errors.UserMessage(err))
			return
		}
		constraint := strings.TrimSpace(spec.Constraint)
		if constraint == "" {
			constraint = manifest.AnyConstraint
		}
		name := manifest.Normalize(spec.Name)
		reqs = append(reqs, manifest.Requirement{
			Name:       name,
			Constraint: constraint,
			Source:     manifest.FormatRequirementsTxt,
		})
		if v, ok := strings.CutPrefix(constraint, "=="); ok {
			pins[name] = strings.TrimSpace(v)
		}
	}

	analyzer := analysis.New(s.fetcher, s.advisories, pins, analysis.Options{
		TargetMajor:      major,
		TargetMinor:      minor,
		SecurityEnabled:  req.Security,
		PerformanceFocus: req.Performance,
	})

	infos, err := analyzer.Analyze(r.Context(), reqs)
	if err != nil {
		s.logger.Errorf("analysis aborted: %v", err)
		writeError(w, http.StatusServiceUnavailable, "analysis aborted")
		return
	}

	rep := report.Aggregate(infos, req.TargetPython, time.Now().UTC())
	writeJSON(w, http.StatusOK, struct {
		Report   report.Report          `json:"report"`
		Packages []analysis.PackageInfo `json:"packages"`
	}{rep, infos})
}

// pinnedVersions resolves reference versions from "==" pins in the request
// body. The server has no local pip environment, so exact pins are the
// only usable advisory reference.
type pinnedVersions map[string]string

func (p pinnedVersions) InstalledVersion(ctx context.Context, pkg string) (string, error) {
	return p[manifest.Normalize(pkg)], nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tc-opendata/railcat/internal/catalog"
	"github.com/tc-opendata/railcat/internal/state"
	"github.com/tc-opendata/railcat/pkg/core"
	"github.com/tc-opendata/railcat/pkg/lint"
	"github.com/tc-opendata/railcat/pkg/lint/provenance"
	_ "github.com/tc-opendata/railcat/pkg/lint/provenance/rules" // registers all rules
)

type jurisdictionSummary struct {
	Code      core.Jurisdiction `json:"code"`
	Country   string            `json:"country"`
	Authority string            `json:"authority,omitempty"`
	Datasets  int               `json:"datasets"`
}

type diagnosticsResponse struct {
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
	Counts      map[string]int    `json:"counts"`
	LinkRunID   string            `json:"link_run_id,omitempty"`
}

func (s *Server) routes(r chi.Router) {
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", s.handleDatasets)
		r.Get("/datasets/{filename}", s.handleDataset)
		r.Get("/jurisdictions", s.handleJurisdictions)
		r.Get("/submodules", s.handleSubmodules)
		r.Get("/diagnostics", s.handleDiagnostics)
		r.Get("/checks", s.handleChecks)
		r.Get("/checks/{id}", s.handleCheck)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "datasets": s.catalog.Len()})
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("jurisdiction")
	if raw == "" {
		writeJSON(w, http.StatusOK, nonNil(s.catalog.Records()))
		return
	}

	j, ok := core.ParseJurisdiction(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown jurisdiction "+strconv.Quote(raw))
		return
	}
	writeJSON(w, http.StatusOK, nonNil(s.catalog.Filter(j)))
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	d, err := s.catalog.Lookup(filename)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleJurisdictions(w http.ResponseWriter, _ *http.Request) {
	out := []jurisdictionSummary{}
	for _, j := range s.catalog.Jurisdictions() {
		out = append(out, jurisdictionSummary{
			Code:      j,
			Country:   j.Country(),
			Authority: j.Authority(),
			Datasets:  len(s.catalog.Filter(j)),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSubmodules(w http.ResponseWriter, _ *http.Request) {
	subs := s.catalog.Submodules()
	if subs == nil {
		subs = []core.Submodule{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	var links []core.LinkResult
	resp := diagnosticsResponse{Counts: map[string]int{}}

	if s.store != nil {
		run, err := s.store.GetLatestCheckRun()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if run != nil {
			links, err = s.store.GetLinkResults(run.ID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			resp.LinkRunID = run.ID
		}
	}

	ctx := provenance.NewContext(s.catalog.Document(), links)
	resp.Diagnostics = provenance.NewAnalyzer(s.lintConfig).Analyze(ctx)
	if resp.Diagnostics == nil {
		resp.Diagnostics = []lint.Diagnostic{}
	}
	for sev, n := range lint.CountBySeverity(resp.Diagnostics) {
		resp.Counts[sev.String()] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChecks(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "no state database configured")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.store.ListCheckRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*core.CheckRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "no state database configured")
		return
	}

	id := chi.URLParam(r, "id")
	run, err := s.store.GetCheckRun(id)
	if errors.Is(err, state.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	results, err := s.store.GetLinkResults(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []core.LinkResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run, "results": results})
}

func nonNil(ds []core.Dataset) []core.Dataset {
	if ds == nil {
		return []core.Dataset{}
	}
	return ds
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

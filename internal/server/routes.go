package server

import (
	"net/http"
	"strings"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Analysis
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/signals", s.handleSignals)

	// Snapshots
	mux.HandleFunc("/api/snapshots", s.handleSnapshotList)
	mux.HandleFunc("/api/snapshots/", s.routeSnapshots)

	// Diff
	mux.HandleFunc("/api/diff", s.handleDiff)
	mux.HandleFunc("/api/diff/commit", s.handleDiffCommit)
}

// routeSnapshots dispatches /api/snapshots/{id}[/performance|/chart].
func (s *Server) routeSnapshots(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/snapshots/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	if parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "Snapshot ID is required")
		return
	}

	id := parts[0]
	if len(parts) == 1 {
		s.handleSnapshotGet(w, r, id)
		return
	}

	switch parts[1] {
	case "performance":
		s.handleSnapshotPerformance(w, r, id)
	case "chart":
		s.handleSnapshotChart(w, r, id)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

package web

import (
	"net/http"
	"strconv"
	"time"
)

// defaultPerfWindow is how far back /debug/perf looks without ?window=.
const defaultPerfWindow = 15 * time.Minute

// handleHealthz reports liveness and the collection size.
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": app.Records.Len(),
	})
}

// handlePerf returns request and query timing percentiles.
// Query: window (Go duration, default 15m), top (default 10).
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if app.Collector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}
	window := defaultPerfWindow
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "invalid window", http.StatusBadRequest)
			return
		}
		window = d
	}
	top := 10
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid top", http.StatusBadRequest)
			return
		}
		top = n
	}
	writeJSON(w, http.StatusOK, app.Collector.Snapshot(timeNow().Add(-window), top))
}

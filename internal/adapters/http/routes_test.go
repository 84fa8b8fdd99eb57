package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"momentum/internal/adapters/http/middleware"
)

// newTestServer wires the full middleware chain around fresh dependencies.
func newTestServer(t *testing.T, operator *middleware.Credentials) http.Handler {
	t.Helper()
	setupApp(t)
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })
	return NewMux(app, Config{
		CSRFKey:   []byte(strings.Repeat("c", 32)),
		Operator:  operator,
		RateLimit: 1000,
		Done:      done,
	})
}

// TestNewMux_Routes verifies every route is registered behind the middleware chain.
func TestNewMux_Routes(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		method, path string
		want         int
	}{
		{"GET", "/healthz", http.StatusOK},
		{"GET", "/api/records", http.StatusOK},
		{"POST", "/records", http.StatusCreated},
		{"GET", "/export", http.StatusOK},
		{"GET", "/presentation", http.StatusOK},
		{"GET", "/debug/perf", http.StatusOK},
		{"GET", "/static/app.css", http.StatusOK},
		{"GET", "/records/model_0", http.StatusNotFound},
		{"DELETE", "/records", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

// TestNewMux_FormPostNeedsCSRFToken verifies browser forms are protected while JSON is exempt.
func TestNewMux_FormPostNeedsCSRFToken(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest("POST", "/records", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("tokenless form status = %d, want 403", rr.Code)
	}
	if app.Records.Len() != 0 {
		t.Error("rejected form still created a record")
	}
}

// TestNewMux_OperatorAuth verifies Basic auth guards everything but /healthz.
func TestNewMux_OperatorAuth(t *testing.T) {
	creds, err := middleware.NewCredentials("operador", "clave")
	if err != nil {
		t.Fatal(err)
	}
	h := newTestServer(t, creds)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/records", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rr.Code)
	}

	req := httptest.NewRequest("GET", "/api/records", nil)
	req.SetBasicAuth("operador", "clave")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", rr.Code)
	}
	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing security headers")
	}
}

// TestLoadCSRFKey verifies key parsing and the production requirement.
func TestLoadCSRFKey(t *testing.T) {
	key, err := LoadCSRFKey(strings.Repeat("ab", 32), true)
	if err != nil || len(key) != 32 {
		t.Fatalf("valid key: %v, len %d", err, len(key))
	}
	if _, err := LoadCSRFKey("abcd", false); err == nil {
		t.Error("short key accepted")
	}
	if _, err := LoadCSRFKey("", true); err == nil {
		t.Error("missing key accepted in production")
	}
	if key, err := LoadCSRFKey("", false); err != nil || len(key) != 32 {
		t.Errorf("development key: %v, len %d", err, len(key))
	}
}

// TestNewMux_SweeperFollowsDone verifies the idle-client sweep only runs with a shutdown channel.
func TestNewMux_SweeperFollowsDone(t *testing.T) {
	prev := startSweeper
	t.Cleanup(func() { startSweeper = prev })
	var started []<-chan struct{}
	startSweeper = func(_ *middleware.RateLimiter, done <-chan struct{}) { started = append(started, done) }

	setupApp(t)
	NewMux(app, Config{CSRFKey: []byte(strings.Repeat("c", 32))})
	if len(started) != 0 {
		t.Fatalf("sweeper started without a shutdown channel")
	}

	done := make(chan struct{})
	defer close(done)
	NewMux(app, Config{CSRFKey: []byte(strings.Repeat("c", 32)), Done: done})
	if len(started) != 1 || started[0] != (<-chan struct{})(done) {
		t.Errorf("sweeper starts = %d, want 1 bound to Done", len(started))
	}
}

package web

import (
	"crypto/rand"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"momentum/internal/adapters/email"
	"momentum/internal/adapters/http/middleware"
	"momentum/internal/adapters/http/perf"
	"momentum/internal/adapters/summary"
	"momentum/internal/application/orchestrators"
	"momentum/internal/application/projections"
	"momentum/internal/content"
	"momentum/internal/domain/presentation"
)

//go:embed templates/*.html static/*
var assets embed.FS

// RecordStore is the Record Store seen by handlers: the use-case write side
// plus the projection read side. *collection.Collection satisfies it.
type RecordStore interface {
	orchestrators.RecordCollection
	projections.RecordReader
}

// Player is the presentation state machine. *presentation.Player satisfies it.
type Player interface {
	orchestrators.SlidePlayer
	Next() bool
	Previous() bool
	Close()
	HandleKey(key string) bool
}

// Deps holds everything the handlers use.
type Deps struct {
	Records    RecordStore
	Catalog    *content.Catalog
	Player     Player
	Summarizer orchestrators.SummaryGenerator
	Sender     email.Sender
	BackupTo   []string
	Collector  *perf.Collector
}

// Config holds the HTTP-layer settings resolved by cmd/server.
type Config struct {
	CSRFKey        []byte
	Production     bool
	TrustedOrigins []string
	Operator       *middleware.Credentials // nil disables operator auth
	RateLimit      int                     // requests per second per client
	SlowRequest    time.Duration
	Done           <-chan struct{} // closed at shutdown; nil skips the idle-client sweep
}

// LoadCSRFKey decodes the 64-hex-character CSRF secret.
// In production the key MUST be set. In development a random key is generated per startup.
func LoadCSRFKey(keyHex string, production bool) ([]byte, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, errors.New("MOMENTUM_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, nil
	}
	if production {
		return nil, errors.New("MOMENTUM_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("csrf_key_random", "hint", "forms break across restarts; set MOMENTUM_CSRF_KEY")
	return key, nil
}

// Global dependencies (set by NewMux)
var app *Deps

// startSweeper runs the idle-client sweep until done closes.
var startSweeper = func(l *middleware.RateLimiter, done <-chan struct{}) {
	go l.RunSweeper(done)
}

// NewMux wires HTTP handlers for the app.
// PRE: deps.Records, deps.Catalog and deps.Player are set; cfg.CSRFKey is 32 bytes
func NewMux(deps *Deps, cfg Config) http.Handler {
	app = deps
	if app.Summarizer == nil {
		app.Summarizer = summary.Unconfigured{}
	}
	if app.Sender == nil {
		app.Sender = email.NewNoopSender()
	}

	mux := http.NewServeMux()
	static, _ := fs.Sub(assets, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	registerRoutes(mux)

	rate := cfg.RateLimit
	if rate <= 0 {
		rate = 20
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)
	if cfg.Done != nil {
		startSweeper(limiter, cfg.Done)
	}

	// Request order: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(cfg.CSRFKey, middleware.CSRFOptions{Secure: cfg.Production, TrustedOrigins: cfg.TrustedOrigins}),
		middleware.Auth(cfg.Operator, "/healthz"),
		middleware.RateLimit(limiter),
		middleware.Timing(deps.Collector, cfg.SlowRequest),
	)
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", handleHome)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /debug/perf", handlePerf)

	// Record Store
	mux.HandleFunc("GET /api/records", handleListRecords)
	mux.HandleFunc("POST /records", handleCreateRecord)
	mux.HandleFunc("POST /records/deselect", handleDeselectRecord)
	mux.HandleFunc("GET /records/{id}", handleGetRecord)
	mux.HandleFunc("POST /records/{id}/delete", handleDeleteRecord)
	mux.HandleFunc("POST /records/{id}/select", handleSelectRecord)

	// Field editor and checklist
	mux.HandleFunc("POST /records/{id}/fields", handleEditField)
	mux.HandleFunc("PUT /api/records/{id}/{section}", handleReplaceSection)
	mux.HandleFunc("POST /records/{id}/tiers", handleAddTier)
	mux.HandleFunc("POST /records/{id}/tiers/{tierID}/delete", handleRemoveTier)
	mux.HandleFunc("POST /records/{id}/progress/{topic}", handleToggleProgress)
	mux.HandleFunc("POST /records/{id}/exercises/{exerciseID}", handleToggleExercise)
	mux.HandleFunc("POST /records/{id}/experience", handleToggleExperience)
	mux.HandleFunc("POST /records/{id}/summary", handleGenerateSummary)

	// Import/export
	mux.HandleFunc("GET /export", handleExport)
	mux.HandleFunc("POST /import", handleImport)
	mux.HandleFunc("POST /export/email", handleEmailBackup)

	// Presentation player
	mux.HandleFunc("POST /records/{id}/presentation/{deck}", handleStartPresentation)
	mux.HandleFunc("GET /presentation", handlePresentation)
	mux.HandleFunc("POST /presentation/next", handlePresentationNext)
	mux.HandleFunc("POST /presentation/previous", handlePresentationPrevious)
	mux.HandleFunc("POST /presentation/close", handlePresentationClose)
	mux.HandleFunc("POST /presentation/key", handlePresentationKey)
}

var _ Player = (*presentation.Player)(nil)

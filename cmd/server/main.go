package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "momentum/internal/adapters/email"
	web "momentum/internal/adapters/http"
	"momentum/internal/adapters/http/middleware"
	"momentum/internal/adapters/http/perf"
	"momentum/internal/adapters/storage"
	"momentum/internal/adapters/storage/record"
	"momentum/internal/adapters/storage/slot"
	summaryPkg "momentum/internal/adapters/summary"
	"momentum/internal/application/collection"
	"momentum/internal/content"
	"momentum/internal/domain/presentation"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	env := envOrDefault("MOMENTUM_ENV", "development")
	production := env == "production"
	slog.SetDefault(newLogger(os.Stderr, production, envOrDefault("MOMENTUM_LOG_LEVEL", "info")))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := perf.NewCollector(perf.DefaultRingSize)

	slots, closeSlots, err := openSlots(envOrDefault("MOMENTUM_STORAGE", "sqlite"), os.Getenv("MOMENTUM_DB_PATH"), collector)
	if err != nil {
		return err
	}
	defer closeSlots()

	catalog, err := content.Load(os.Getenv("MOMENTUM_CONTENT_PATH"))
	if err != nil {
		return err
	}

	repo := record.NewRepository(slots, envOrDefault("MOMENTUM_SLOT_KEY", record.DefaultSlotKey))
	records := collection.New(catalog.Template, repo)
	if err := records.Hydrate(ctx, repo); err != nil {
		return err
	}

	deps := &web.Deps{
		Records:    records,
		Catalog:    catalog,
		Player:     presentation.NewPlayer(),
		Summarizer: newSummarizer(ctx),
		Sender:     newSender(production),
		BackupTo:   splitList(os.Getenv("MOMENTUM_BACKUP_TO")),
		Collector:  collector,
	}

	csrfKey, err := web.LoadCSRFKey(os.Getenv("MOMENTUM_CSRF_KEY"), production)
	if err != nil {
		return err
	}
	var operator *middleware.Credentials
	if pw := os.Getenv("MOMENTUM_OPERATOR_PASSWORD"); pw != "" {
		operator, err = middleware.NewCredentials(envOrDefault("MOMENTUM_OPERATOR_USER", "operador"), pw)
		if err != nil {
			return fmt.Errorf("hash operator password: %w", err)
		}
	} else if production {
		slog.Warn("operator_auth_disabled", "hint", "set MOMENTUM_OPERATOR_PASSWORD")
	}
	rate, _ := strconv.Atoi(envOrDefault("MOMENTUM_RATE_LIMIT", "20"))

	addr := envOrDefault("MOMENTUM_ADDR", ":8080")
	srv := &http.Server{
		Addr: addr,
		Handler: web.NewMux(deps, web.Config{
			CSRFKey:        csrfKey,
			Production:     production,
			TrustedOrigins: splitList(os.Getenv("MOMENTUM_TRUSTED_ORIGINS")),
			Operator:       operator,
			RateLimit:      rate,
			SlowRequest:    middleware.SlowRequestThreshold(),
			Done:           ctx.Done(),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", addr, "env", env,
			"records", records.Len(), "schema", storage.LatestSchemaVersion())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		slog.Info("server_stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

// newLogger returns a JSON handler in production, text otherwise.
func newLogger(w io.Writer, production bool, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if production {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openSlots opens the durable slot store selected by MOMENTUM_STORAGE.
func openSlots(kind, path string, collector *perf.Collector) (slot.Store, func(), error) {
	switch kind {
	case "sqlite":
		if path == "" {
			path = "momentum.db"
		}
		db, err := storage.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.MigrateDB(db, path); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		timed := storage.NewTimedDB(db, collector, storage.SlowQueryThreshold())
		slog.Info("storage_opened", "kind", kind, "path", path)
		return slot.NewSQLiteStore(timed), func() { db.Close() }, nil
	case "bolt":
		if path == "" {
			path = "momentum.bolt"
		}
		b, err := slot.OpenBolt(path)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("storage_opened", "kind", kind, "path", path)
		return b, func() { b.Close() }, nil
	}
	return nil, nil, fmt.Errorf("MOMENTUM_STORAGE must be sqlite or bolt, got %q", kind)
}

// newSummarizer returns the Gemini generator, or one that always fails when no key is set.
func newSummarizer(ctx context.Context) summaryPkg.Generator {
	key := os.Getenv("MOMENTUM_GENAI_KEY")
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		slog.Info("summary_generator_unconfigured")
		return summaryPkg.Unconfigured{}
	}
	g, err := summaryPkg.NewGenAIGenerator(ctx, key, envOrDefault("MOMENTUM_GENAI_MODEL", summaryPkg.DefaultModel))
	if err != nil {
		slog.Error("summary_generator_init_failed", "error", err)
		return summaryPkg.Unconfigured{}
	}
	slog.Info("summary_generator_configured", "model", g.Name())
	return g
}

// newSender returns the Resend sender when a key is set, the noop sender otherwise.
func newSender(production bool) emailPkg.Sender {
	resendKey := os.Getenv("MOMENTUM_RESEND_KEY")
	from := envOrDefault("MOMENTUM_RESEND_FROM", "Talentos Momentum <respaldos@talentosmomentum.co>")
	if resendKey != "" {
		slog.Info("email_sender_configured", "kind", "resend")
		return emailPkg.NewResendSender(resendKey, from)
	}
	if production {
		slog.Warn("email_sender_noop", "hint", "MOMENTUM_RESEND_KEY is not set; backups are not delivered")
	}
	return emailPkg.NewNoopSender()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"momentum/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := openTestDB(t)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// TestTimedDB_RecordsStatements verifies each statement lands in the collector
// under a "VERB table" label.
func TestTimedDB_RecordsStatements(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), collector, time.Second)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hola"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hola" {
		t.Errorf("val = %q, want hola", val)
	}
	if collector.TotalRecorded() != 2 {
		t.Errorf("TotalRecorded = %d, want 2", collector.TotalRecorded())
	}
	snap := collector.Snapshot(time.Time{}, 10)
	labels := map[string]bool{}
	for _, s := range snap.SlowestQueries {
		labels[s.Path] = true
	}
	if !labels["INSERT test"] || !labels["SELECT test"] {
		t.Errorf("labels = %v", labels)
	}
}

// TestTimedDB_ErrorPassthrough verifies SQL errors are returned unchanged and still timed.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(openTimedTestDB(t), collector, time.Second)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO nonexistent_table VALUES (?)", 1); err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}
	var val string
	err := tdb.QueryRowContext(context.Background(), "SELECT val FROM test WHERE id = ?", "nope").Scan(&val)
	if err != sql.ErrNoRows {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
	if collector.TotalRecorded() != 2 {
		t.Errorf("TotalRecorded = %d, want 2 (must record even on error)", collector.TotalRecorded())
	}
}

// TestTimedDB_NilCollectorAndDefaultThreshold verifies the wrapper works bare.
func TestTimedDB_NilCollectorAndDefaultThreshold(t *testing.T) {
	db := openTimedTestDB(t)
	tdb := NewTimedDB(db, nil, 0)
	if tdb.threshold != DefaultSlowQueryMs*time.Millisecond {
		t.Errorf("threshold = %v", tdb.threshold)
	}
	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES ('1', 'x')"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	if tdb.RawDB() != db {
		t.Error("RawDB should return the wrapped *sql.DB")
	}
}

// TestSlowQueryThreshold_Env verifies the env override and its fallback.
func TestSlowQueryThreshold_Env(t *testing.T) {
	t.Setenv("MOMENTUM_SLOW_QUERY_MS", "7")
	if got := SlowQueryThreshold(); got != 7*time.Millisecond {
		t.Errorf("threshold = %v, want 7ms", got)
	}
	t.Setenv("MOMENTUM_SLOW_QUERY_MS", "abc")
	if got := SlowQueryThreshold(); got != DefaultSlowQueryMs*time.Millisecond {
		t.Errorf("threshold = %v, want default", got)
	}
}

func TestStatementLabel(t *testing.T) {
	tests := []struct{ query, want string }{
		{"SELECT value FROM slot WHERE key = ?", "SELECT slot"},
		{"INSERT INTO slot (key) VALUES (?) ON CONFLICT(key) DO UPDATE SET value = excluded.value", "INSERT slot"},
		{"delete from slot where key = ?", "DELETE slot"},
		{"PRAGMA user_version", "PRAGMA"},
		{"  ", "empty"},
	}
	for _, tt := range tests {
		if got := statementLabel(tt.query); got != tt.want {
			t.Errorf("statementLabel(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

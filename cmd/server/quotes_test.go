package main

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/atolye/machquote/internal/catalog"
)

func newServerTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE materials (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			material_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			density_kg_mm3 REAL NOT NULL,
			cost_per_kg REAL NOT NULL DEFAULT 0,
			kc REAL NOT NULL DEFAULT 0,
			notes TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE rate_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			machine_hourly_rate REAL NOT NULL DEFAULT 0,
			setup_labor_rate REAL NOT NULL DEFAULT 0,
			tool_cost_per_part REAL NOT NULL DEFAULT 0,
			overhead_percent REAL NOT NULL DEFAULT 0,
			setup_time_min REAL NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'USD',
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE quotes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			title TEXT,
			notes TEXT,
			material_id TEXT NOT NULL,
			job_json TEXT NOT NULL,
			results_json TEXT NOT NULL,
			totals_json TEXT NOT NULL
		);
	`)
	if err != nil {
		t.Fatalf("failed creating test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func newTestServer(t *testing.T) *server {
	t.Helper()
	db := newServerTestDB(t)
	return &server{db: db, materials: catalog.NewStore(db)}
}

func seedQuote(t *testing.T, db *sql.DB, createdAt, title, notes, totalsJSON string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO quotes (created_at, title, notes, material_id, job_json, results_json, totals_json)
		VALUES (?, ?, ?, 'AL6061', '{}', '{}', ?)
	`, createdAt, title, notes, totalsJSON)
	if err != nil {
		t.Fatalf("failed to seed quote: %v", err)
	}
}

func TestListQuotesOrdersByDateDescAndReadsTotal(t *testing.T) {
	srv := newTestServer(t)

	seedQuote(t, srv.db, "2026-01-01 10:00:00", "First bracket", "rough only", `{"total": 100.50}`)
	seedQuote(t, srv.db, "2026-01-03 12:00:00", "Third bracket", "finish pass", `{"total": 300.00}`)
	seedQuote(t, srv.db, "2026-01-02 11:00:00", "Second bracket", "rush job", `{"total": 200.25}`)

	quotes, err := srv.listQuotes("")
	if err != nil {
		t.Fatalf("listQuotes returned error: %v", err)
	}

	if len(quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(quotes))
	}

	if quotes[0].Title != "Third bracket" || quotes[1].Title != "Second bracket" || quotes[2].Title != "First bracket" {
		t.Fatalf("quotes are not sorted desc by created_at: %+v", quotes)
	}

	if quotes[0].Total != 300.00 || quotes[1].Total != 200.25 || quotes[2].Total != 100.50 {
		t.Fatalf("unexpected totals: %+v", quotes)
	}
}

func TestListQuotesFilterByTitleAndNotes(t *testing.T) {
	srv := newTestServer(t)

	seedQuote(t, srv.db, "2026-01-01 10:00:00", "Housing", "red anodize", `{"total": 80}`)
	seedQuote(t, srv.db, "2026-01-02 10:00:00", "Flange", "vip customer", `{"total": 120}`)
	seedQuote(t, srv.db, "2026-01-03 10:00:00", "Prototype", "urgent housing rework", `{"total": 160}`)

	byTitle, err := srv.listQuotes("Flan")
	if err != nil {
		t.Fatalf("listQuotes title filter returned error: %v", err)
	}
	if len(byTitle) != 1 || byTitle[0].Title != "Flange" {
		t.Fatalf("expected 1 quote filtered by title, got %+v", byTitle)
	}

	byNotes, err := srv.listQuotes("housing")
	if err != nil {
		t.Fatalf("listQuotes notes filter returned error: %v", err)
	}
	if len(byNotes) != 2 {
		t.Fatalf("expected 2 quotes filtered by notes/title, got %+v", byNotes)
	}
}

func TestExtractTotalFromJSON(t *testing.T) {
	if got := extractTotalFromJSON(`{"total": 42.5}`); got != 42.5 {
		t.Fatalf("total = %v, want 42.5", got)
	}
	if got := extractTotalFromJSON(`{"total_cost": 10}`); got != 10 {
		t.Fatalf("total_cost fallback = %v, want 10", got)
	}
	if got := extractTotalFromJSON(`not json`); got != 0 {
		t.Fatalf("malformed totals = %v, want 0", got)
	}
}

package seed

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/atolye/machquote/internal/db"
	"github.com/atolye/machquote/internal/migrations"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	cfg := Config{
		AdminEmail:    "admin@machquote.dev",
		AdminPassword: "12345",
	}

	// 1 admin + 5 materials + 1 rate config row.
	for i := 0; i < 10; i++ {
		stats, err := Run(database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 7 {
				t.Fatalf("expected 7 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM users WHERE email = ?`, []any{"admin@machquote.dev"}, 1)
	assertCount(t, database, `SELECT COUNT(*) FROM materials`, nil, 5)
	assertCount(t, database, `SELECT COUNT(*) FROM rate_config WHERE id = 1`, nil, 1)

	var density float64
	if err := database.QueryRow(`SELECT density_kg_mm3 FROM materials WHERE material_id = ?`, "AL6061").Scan(&density); err != nil {
		t.Fatalf("query AL6061 density: %v", err)
	}
	if density != 2.70e-6 {
		t.Fatalf("expected AL6061 density 2.70e-6, got %v", density)
	}

	var machineRate, overhead float64
	if err := database.QueryRow(`SELECT machine_hourly_rate, overhead_percent FROM rate_config WHERE id = 1`).Scan(&machineRate, &overhead); err != nil {
		t.Fatalf("query rate config: %v", err)
	}
	if machineRate != 60 || overhead != 15 {
		t.Fatalf("unexpected rate defaults: machine=%v overhead=%v", machineRate, overhead)
	}

	var hash string
	if err := database.QueryRow(`SELECT password_hash FROM users WHERE email = ?`, "admin@machquote.dev").Scan(&hash); err != nil {
		t.Fatalf("query admin hash: %v", err)
	}
	if hash != hashPassword("12345") {
		t.Fatalf("expected admin hash to match password")
	}
}

func TestRunWithoutAdminCredentialsSkipsAdmin(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "seed-noadmin.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	stats, err := Run(database, Config{})
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != 6 {
		t.Fatalf("expected 6 inserts without admin, got %d", stats.Inserts)
	}

	assertCount(t, database, `SELECT COUNT(*) FROM users`, nil, 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, args []any, want int) {
	t.Helper()

	var count int
	if err := database.QueryRow(query, args...).Scan(&count); err != nil {
		t.Fatalf("count query %q: %v", query, err)
	}
	if count != want {
		t.Fatalf("count for %q = %d, want %d", query, count, want)
	}
}

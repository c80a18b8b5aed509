package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv file: %v", err)
	}
	return path
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("MATERIALS_CSV", "")

	path := writeEnvFile(t, `
# local dev settings

DB_PATH=./dev.db
export PORT=9090
SESSION_SECRET="top secret"
MATERIALS_CSV='data/materials.csv'
`)

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	want := map[string]string{
		"DB_PATH":        "./dev.db",
		"PORT":           "9090",
		"SESSION_SECRET": "top secret",
		"MATERIALS_CSV":  "data/materials.csv",
	}
	for key, value := range want {
		if got := os.Getenv(key); got != value {
			t.Errorf("%s = %q, want %q", key, got, value)
		}
	}
}

func TestLoadDotEnv_ExistingEnvWins(t *testing.T) {
	t.Setenv("DB_PATH", "/var/lib/machquote.db")

	path := writeEnvFile(t, "DB_PATH=./dev.db\n")
	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	if got := os.Getenv("DB_PATH"); got != "/var/lib/machquote.db" {
		t.Fatalf("DB_PATH = %q, want the pre-set value", got)
	}
}

func TestLoadDotEnv_MissingFileIsNotAnError(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("loadDotEnv on missing file: %v", err)
	}
}

func TestParseDotEnvLine(t *testing.T) {
	cases := []struct {
		line  string
		key   string
		value string
		ok    bool
	}{
		{"PORT=8080", "PORT", "8080", true},
		{"export PORT=8080", "PORT", "8080", true},
		{`TITLE="Machining Quote"`, "TITLE", "Machining Quote", true},
		{"TITLE='Machining Quote'", "TITLE", "Machining Quote", true},
		{"# PORT=8080", "", "", false},
		{"", "", "", false},
		{"no equals sign", "", "", false},
		{"=orphan", "", "", false},
	}

	for _, tc := range cases {
		key, value, ok := parseDotEnvLine(tc.line)
		if key != tc.key || value != tc.value || ok != tc.ok {
			t.Errorf("parseDotEnvLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tc.line, key, value, ok, tc.key, tc.value, tc.ok)
		}
	}
}

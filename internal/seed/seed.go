// Package seed installs the default reference data a fresh quote database
// needs: the builtin material catalog, the shop rate defaults, and the admin
// user.
package seed

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
)

// Builtin material catalog. Densities in kg/mm³.
var defaultMaterials = []struct {
	MaterialID   string
	Name         string
	DensityKgMM3 float64
}{
	{"AL6061", "Aluminum 6061", 2.70e-6},
	{"AL7075", "Aluminum 7075", 2.81e-6},
	{"AL5083", "Aluminum 5083", 2.65e-6},
	{"ST1018", "Steel 1018", 7.85e-6},
	{"SS304", "Stainless 304", 8.00e-6},
}

// Shop rate defaults for a fresh install.
const (
	defaultMachineHourlyRate = 60.0
	defaultSetupLaborRate    = 40.0
	defaultToolCostPerPart   = 1.0
	defaultOverheadPercent   = 15.0
	defaultSetupTimeMin      = 60.0
	defaultCurrency          = "USD"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureMaterials(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureRateConfig(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, hashPassword(password)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

// hashPassword must stay in sync with the credential check in cmd/server.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func ensureMaterials(tx *sql.Tx, stats *Stats) error {
	for _, m := range defaultMaterials {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM materials WHERE material_id = ? LIMIT 1)`, m.MaterialID).Scan(&exists); err != nil {
			return fmt.Errorf("check material %s existence: %w", m.MaterialID, err)
		}
		if exists {
			continue
		}

		if _, err := tx.Exec(`
			INSERT INTO materials (material_id, name, density_kg_mm3, cost_per_kg, kc, notes, active)
			VALUES (?, ?, ?, 0, 0, '', TRUE)
		`, m.MaterialID, m.Name, m.DensityKgMM3); err != nil {
			return fmt.Errorf("insert material %s: %w", m.MaterialID, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureRateConfig(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM rate_config WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check rate config existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO rate_config (
			id,
			machine_hourly_rate,
			setup_labor_rate,
			tool_cost_per_part,
			overhead_percent,
			setup_time_min,
			currency
		)
		VALUES (1, ?, ?, ?, ?, ?, ?)
	`, defaultMachineHourlyRate, defaultSetupLaborRate, defaultToolCostPerPart,
		defaultOverheadPercent, defaultSetupTimeMin, defaultCurrency); err != nil {
		return fmt.Errorf("insert rate config singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

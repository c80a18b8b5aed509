// Package catalog manages the material reference data used by the estimation
// engine: density, price per kg and the optional cutting-force coefficient,
// keyed by a stable material identifier such as "AL6061".
package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/atolye/machquote/internal/estimate"
)

// ErrUnknownMaterial is returned when a material identifier has no catalog row.
var ErrUnknownMaterial = errors.New("unknown material")

// Material is one catalog row. ID is the database key; MaterialID is the
// stable identifier quotes reference.
type Material struct {
	ID           int64
	MaterialID   string
	Name         string
	DensityKgMM3 float64
	CostPerKg    float64
	KC           float64
	Notes        string
	Active       bool
}

// Reference converts a catalog row into the immutable form the engine takes.
func (m Material) Reference() estimate.Material {
	return estimate.Material{
		ID:           m.MaterialID,
		Name:         m.Name,
		DensityKgMM3: m.DensityKgMM3,
		CostPerKg:    m.CostPerKg,
		KC:           m.KC,
	}
}

// Store reads and writes the materials table.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open quote database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get looks up one material by its identifier.
func (s *Store) Get(materialID string) (Material, error) {
	var m Material
	err := s.db.QueryRow(`
		SELECT id, material_id, name, density_kg_mm3, cost_per_kg, kc, COALESCE(notes, ''), active
		FROM materials
		WHERE material_id = ?
	`, materialID).Scan(&m.ID, &m.MaterialID, &m.Name, &m.DensityKgMM3, &m.CostPerKg, &m.KC, &m.Notes, &m.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return Material{}, fmt.Errorf("material %q: %w", materialID, ErrUnknownMaterial)
	}
	if err != nil {
		return Material{}, fmt.Errorf("query material: %w", err)
	}
	return m, nil
}

// List returns all catalog rows, newest first.
func (s *Store) List() ([]Material, error) {
	rows, err := s.db.Query(`
		SELECT id, material_id, name, density_kg_mm3, cost_per_kg, kc, COALESCE(notes, ''), active
		FROM materials
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := make([]Material, 0)
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.MaterialID, &m.Name, &m.DensityKgMM3, &m.CostPerKg, &m.KC, &m.Notes, &m.Active); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}

	return materials, nil
}

// Create inserts a new material row.
func (s *Store) Create(m Material) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO materials (material_id, name, density_kg_mm3, cost_per_kg, kc, notes, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.MaterialID, m.Name, m.DensityKgMM3, m.CostPerKg, m.KC, m.Notes, m.Active)
	if err != nil {
		return 0, fmt.Errorf("insert material: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted material id: %w", err)
	}
	return id, nil
}

// Update rewrites an existing material row by database id.
func (s *Store) Update(m Material) error {
	res, err := s.db.Exec(`
		UPDATE materials
		SET
			material_id = ?,
			name = ?,
			density_kg_mm3 = ?,
			cost_per_kg = ?,
			kc = ?,
			notes = ?,
			active = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, m.MaterialID, m.Name, m.DensityKgMM3, m.CostPerKg, m.KC, m.Notes, m.Active, m.ID)
	if err != nil {
		return fmt.Errorf("update material: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("material id %d: %w", m.ID, ErrUnknownMaterial)
	}
	return nil
}

// Upsert inserts the material or, if its material_id exists, overwrites the
// physical properties while keeping notes and active flag.
func (s *Store) Upsert(m Material) error {
	_, err := s.db.Exec(`
		INSERT INTO materials (material_id, name, density_kg_mm3, cost_per_kg, kc, notes, active)
		VALUES (?, ?, ?, ?, ?, ?, TRUE)
		ON CONFLICT(material_id) DO UPDATE SET
			name = excluded.name,
			density_kg_mm3 = excluded.density_kg_mm3,
			cost_per_kg = excluded.cost_per_kg,
			kc = excluded.kc,
			updated_at = CURRENT_TIMESTAMP
	`, m.MaterialID, m.Name, m.DensityKgMM3, m.CostPerKg, m.KC, m.Notes)
	if err != nil {
		return fmt.Errorf("upsert material: %w", err)
	}
	return nil
}

package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/atolye/machquote/internal/catalog"
	"github.com/atolye/machquote/internal/config"
	"github.com/atolye/machquote/internal/db"
	"github.com/atolye/machquote/internal/migrations"
	"github.com/atolye/machquote/internal/seed"
)

type server struct {
	auth      *authService
	db        *sql.DB
	materials *catalog.Store
}

// shopRates is the rate_config singleton: the shop-wide cost parameters every
// quote starts from unless the request overrides them.
type shopRates struct {
	MachineHourlyRate float64 `json:"machine_hourly_rate"`
	SetupLaborRate    float64 `json:"setup_labor_rate"`
	ToolCostPerPart   float64 `json:"tool_cost_per_part"`
	OverheadPercent   float64 `json:"overhead_percent"`
	SetupTimeMin      float64 `json:"setup_time_min"`
	Currency          string  `json:"currency"`
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	if _, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}); err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}

	materials := catalog.NewStore(database)
	if cfg.MaterialsCSV != "" {
		if err := importMaterialsCSV(materials, cfg.MaterialsCSV); err != nil {
			log.Fatalf("failed to import materials csv: %v", err)
		}
	}

	srv := &server{
		auth:      newAuthService(database, cfg.SessionSecret),
		db:        database,
		materials: materials,
	}

	r := chi.NewRouter()
	r.Use(srv.authMiddleware)
	r.Get("/healthz", srv.handleHealthz)
	r.Post("/login", srv.handleLogin)
	r.Post("/logout", srv.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Post("/quote", srv.handleQuoteCompute)
		r.Post("/quotes", srv.handleQuoteCreate)
		r.Get("/quotes", srv.handleQuotesList)
		r.Get("/quotes/{id}", srv.handleQuoteDetail)
		r.Get("/quotes/{id}/pdf", srv.handleQuotePDF)
		r.Get("/quotes/{id}/xlsx", srv.handleQuoteExcel)
		r.Get("/quotes/{id}/csv", srv.handleQuoteCSV)

		r.Get("/materials", srv.handleMaterialsList)
		r.Post("/materials", srv.handleMaterialCreate)
		r.Post("/materials/{id}", srv.handleMaterialUpdate)
		r.Post("/materials/import", srv.handleMaterialsImport)

		r.Get("/rates", srv.handleRatesGet)
		r.Post("/rates", srv.handleRatesUpdate)
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func importMaterialsCSV(materials *catalog.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	result, err := materials.ImportCSV(f)
	if err != nil {
		return err
	}
	log.Printf("materials csv: imported %d of %d rows", result.ImportedRows, result.TotalRows)
	for _, rowErr := range result.Errors {
		log.Printf("materials csv row %d: %s %s", rowErr.Row, rowErr.Field, rowErr.Message)
	}
	return nil
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid, err := s.auth.validateCredentials(creds.Email, creds.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "authentication error")
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, creds.Email)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		if !isAuthenticated(r, s.auth) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *server) handleMaterialsList(w http.ResponseWriter, r *http.Request) {
	materials, err := s.materials.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load materials")
		return
	}
	writeJSON(w, http.StatusOK, materialsToJSON(materials))
}

type materialJSON struct {
	ID           int64   `json:"id"`
	MaterialID   string  `json:"material_id"`
	Name         string  `json:"name"`
	DensityKgMM3 float64 `json:"density_kg_mm3"`
	CostPerKg    float64 `json:"cost_per_kg"`
	KC           float64 `json:"kc"`
	Notes        string  `json:"notes,omitempty"`
	Active       bool    `json:"active"`
}

func materialsToJSON(materials []catalog.Material) []materialJSON {
	out := make([]materialJSON, 0, len(materials))
	for _, m := range materials {
		out = append(out, materialJSON(m))
	}
	return out
}

func (s *server) handleMaterialCreate(w http.ResponseWriter, r *http.Request) {
	var m materialJSON
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if m.MaterialID == "" || m.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "material_id and name are required")
		return
	}
	if m.DensityKgMM3 <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "density_kg_mm3 must be greater than 0")
		return
	}

	mat := catalog.Material(m)
	mat.Active = true
	id, err := s.materials.Create(mat)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create material")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *server) handleMaterialUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid material id")
		return
	}

	var m materialJSON
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if m.MaterialID == "" || m.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "material_id and name are required")
		return
	}
	if m.DensityKgMM3 <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "density_kg_mm3 must be greater than 0")
		return
	}

	mat := catalog.Material(m)
	mat.ID = id
	if err := s.materials.Update(mat); err != nil {
		if errors.Is(err, catalog.ErrUnknownMaterial) {
			writeError(w, http.StatusNotFound, "material not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update material")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleMaterialsImport(w http.ResponseWriter, r *http.Request) {
	result, err := s.materials.ImportCSV(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleRatesGet(w http.ResponseWriter, r *http.Request) {
	rates, err := s.getShopRates()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load rate config")
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

func (s *server) handleRatesUpdate(w http.ResponseWriter, r *http.Request) {
	var rates shopRates
	if err := json.NewDecoder(r.Body).Decode(&rates); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if rates.MachineHourlyRate < 0 || rates.SetupLaborRate < 0 || rates.ToolCostPerPart < 0 || rates.SetupTimeMin < 0 {
		writeError(w, http.StatusUnprocessableEntity, "rates must be greater than or equal to 0")
		return
	}
	if rates.OverheadPercent < 0 || rates.OverheadPercent > 100 {
		writeError(w, http.StatusUnprocessableEntity, "overhead_percent must be between 0 and 100")
		return
	}
	if rates.Currency == "" {
		rates.Currency = "USD"
	}

	if err := s.updateShopRates(rates); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save rate config")
		return
	}

	writeJSON(w, http.StatusOK, rates)
}

func (s *server) getShopRates() (shopRates, error) {
	var rates shopRates
	err := s.db.QueryRow(`
		SELECT machine_hourly_rate, setup_labor_rate, tool_cost_per_part, overhead_percent, setup_time_min, currency
		FROM rate_config
		WHERE id = 1
	`).Scan(
		&rates.MachineHourlyRate,
		&rates.SetupLaborRate,
		&rates.ToolCostPerPart,
		&rates.OverheadPercent,
		&rates.SetupTimeMin,
		&rates.Currency,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shopRates{}, fmt.Errorf("rate_config singleton not found")
		}
		return shopRates{}, fmt.Errorf("query rate_config: %w", err)
	}
	return rates, nil
}

func (s *server) updateShopRates(rates shopRates) error {
	_, err := s.db.Exec(`
		UPDATE rate_config
		SET
			machine_hourly_rate = ?,
			setup_labor_rate = ?,
			tool_cost_per_part = ?,
			overhead_percent = ?,
			setup_time_min = ?,
			currency = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		rates.MachineHourlyRate,
		rates.SetupLaborRate,
		rates.ToolCostPerPart,
		rates.OverheadPercent,
		rates.SetupTimeMin,
		rates.Currency,
	)
	if err != nil {
		return fmt.Errorf("update rate_config: %w", err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

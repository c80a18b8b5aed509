package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atolye/machquote/internal/catalog"
	"github.com/atolye/machquote/internal/estimate"
	"github.com/atolye/machquote/internal/export"
)

// quoteRequest is the wire form of one estimation request. Costs are optional;
// omitted cost fields fall back to the shop rate config, and an omitted
// material price falls back to the catalog price of the selected material.
type quoteRequest struct {
	Title          string               `json:"title,omitempty"`
	Notes          string               `json:"notes,omitempty"`
	MaterialID     string               `json:"material_id"`
	Block          estimate.Block       `json:"block"`
	FinalVolumeMM3 float64              `json:"final_volume_mm3"`
	FeedMode       estimate.FeedMode    `json:"feed_mode"`
	RadialMode     estimate.RadialMode  `json:"radial_mode"`
	Operations     []estimate.Operation `json:"operations"`
	Costs          *estimate.CostParams `json:"costs,omitempty"`
}

type quoteResponse struct {
	Job    estimate.Job         `json:"job"`
	Result estimate.QuoteResult `json:"result"`
}

type quoteListItem struct {
	ID        int64   `json:"id"`
	CreatedAt string  `json:"created_at"`
	Title     string  `json:"title"`
	Total     float64 `json:"total"`
}

type quoteDetail struct {
	quoteListItem
	Notes  string               `json:"notes,omitempty"`
	Job    estimate.Job         `json:"job"`
	Result estimate.QuoteResult `json:"result"`
}

// resolveJob turns a request into a fully specified engine job: material from
// the catalog, cost defaults from the shop rate config.
func (s *server) resolveJob(req quoteRequest) (estimate.Job, error) {
	material, err := s.materials.Get(req.MaterialID)
	if err != nil {
		return estimate.Job{}, err
	}

	var costs estimate.CostParams
	if req.Costs != nil {
		costs = *req.Costs
	} else {
		rates, err := s.getShopRates()
		if err != nil {
			return estimate.Job{}, err
		}
		costs = estimate.CostParams{
			MachineHourlyRate: rates.MachineHourlyRate,
			ToolCostPerPart:   rates.ToolCostPerPart,
			OverheadPercent:   rates.OverheadPercent,
			SetupTimeMin:      rates.SetupTimeMin,
			SetupLaborRate:    rates.SetupLaborRate,
		}
	}
	if costs.MaterialPricePerKg == 0 {
		costs.MaterialPricePerKg = material.CostPerKg
	}

	return estimate.Job{
		Block:          req.Block,
		FinalVolumeMM3: req.FinalVolumeMM3,
		Material:       material.Reference(),
		Operations:     req.Operations,
		Costs:          costs,
		FeedMode:       req.FeedMode,
		RadialMode:     req.RadialMode,
	}, nil
}

func (s *server) parseQuoteRequest(w http.ResponseWriter, r *http.Request) (quoteRequest, estimate.Job, bool) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return quoteRequest{}, estimate.Job{}, false
	}

	job, err := s.resolveJob(req)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownMaterial) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return quoteRequest{}, estimate.Job{}, false
		}
		writeError(w, http.StatusInternalServerError, "failed to resolve quote inputs")
		return quoteRequest{}, estimate.Job{}, false
	}

	if fieldErrs := estimate.ValidateJob(job); len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
		return quoteRequest{}, estimate.Job{}, false
	}

	return req, job, true
}

func (s *server) handleQuoteCompute(w http.ResponseWriter, r *http.Request) {
	_, job, ok := s.parseQuoteRequest(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{Job: job, Result: estimate.Estimate(job)})
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	req, job, ok := s.parseQuoteRequest(w, r)
	if !ok {
		return
	}

	result := estimate.Estimate(job)

	id, err := s.insertQuote(req, job, result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save quote")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     id,
		"job":    job,
		"result": result,
	})
}

func (s *server) insertQuote(req quoteRequest, job estimate.Job, result estimate.QuoteResult) (int64, error) {
	jobJSON, err := json.Marshal(job)
	if err != nil {
		return 0, fmt.Errorf("marshal job snapshot: %w", err)
	}
	resultsJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("marshal results snapshot: %w", err)
	}
	totalsJSON, err := json.Marshal(map[string]float64{
		"total":              result.TotalCost,
		"machining_time_min": result.MachiningTimeMin,
		"total_time_min":     result.TotalTimeMin,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal totals snapshot: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO quotes (created_at, title, notes, material_id, job_json, results_json, totals_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, time.Now().UTC().Format("2006-01-02 15:04:05"), req.Title, req.Notes, req.MaterialID,
		string(jobJSON), string(resultsJSON), string(totalsJSON))
	if err != nil {
		return 0, fmt.Errorf("insert quote: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted quote id: %w", err)
	}
	return id, nil
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.listQuotes(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load quotes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":  query,
		"quotes": quotes,
	})
}

func (s *server) listQuotes(query string) ([]quoteListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT
			id,
			created_at,
			COALESCE(title, ''),
			totals_json
		FROM quotes
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quotes := make([]quoteListItem, 0)
	for rows.Next() {
		var item quoteListItem
		var totalsJSON string
		if err := rows.Scan(&item.ID, &item.CreatedAt, &item.Title, &totalsJSON); err != nil {
			return nil, err
		}
		item.Total = extractTotalFromJSON(totalsJSON)
		quotes = append(quotes, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return quotes, nil
}

func extractTotalFromJSON(totalsJSON string) float64 {
	var values map[string]float64
	if err := json.Unmarshal([]byte(totalsJSON), &values); err != nil {
		return 0
	}

	for _, key := range []string{"total", "grand_total", "total_cost"} {
		if total, ok := values[key]; ok {
			return total
		}
	}

	return 0
}

// getQuoteDetail reads a stored snapshot verbatim. Saved quotes are never
// recomputed: the numbers a customer saw are the numbers that stay on file.
func (s *server) getQuoteDetail(id int64) (quoteDetail, error) {
	var detail quoteDetail
	var notes sql.NullString
	var jobJSON, resultsJSON, totalsJSON string

	err := s.db.QueryRow(`
		SELECT id, created_at, COALESCE(title, ''), notes, job_json, results_json, totals_json
		FROM quotes
		WHERE id = ?
	`, id).Scan(&detail.ID, &detail.CreatedAt, &detail.Title, &notes, &jobJSON, &resultsJSON, &totalsJSON)
	if err != nil {
		return quoteDetail{}, err
	}

	detail.Notes = notes.String
	detail.Total = extractTotalFromJSON(totalsJSON)

	if err := json.Unmarshal([]byte(jobJSON), &detail.Job); err != nil {
		return quoteDetail{}, fmt.Errorf("decode job snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &detail.Result); err != nil {
		return quoteDetail{}, fmt.Errorf("decode results snapshot: %w", err)
	}

	return detail, nil
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.loadQuoteDetail(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *server) loadQuoteDetail(w http.ResponseWriter, r *http.Request) (quoteDetail, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid quote id")
		return quoteDetail{}, false
	}

	detail, err := s.getQuoteDetail(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "quote not found")
		return quoteDetail{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load quote")
		return quoteDetail{}, false
	}

	return detail, true
}

func (s *server) quoteDocument(detail quoteDetail) export.Document {
	title := detail.Title
	if title == "" {
		title = fmt.Sprintf("Machining Quote #%d", detail.ID)
	}
	return export.BuildDocument(title, detail.CreatedAt, s.currency(), detail.Job, detail.Result)
}

func (s *server) currency() string {
	rates, err := s.getShopRates()
	if err != nil {
		return "USD"
	}
	return rates.Currency
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.loadQuoteDetail(w, r)
	if !ok {
		return
	}

	pdf, err := export.GeneratePDF(s.quoteDocument(detail))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%d.pdf"`, detail.ID))
	_, _ = w.Write(pdf)
}

func (s *server) handleQuoteExcel(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.loadQuoteDetail(w, r)
	if !ok {
		return
	}

	workbook, err := export.GenerateExcel(s.quoteDocument(detail))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%d.xlsx"`, detail.ID))
	_, _ = w.Write(workbook)
}

func (s *server) handleQuoteCSV(w http.ResponseWriter, r *http.Request) {
	detail, ok := s.loadQuoteDetail(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, s.quoteDocument(detail)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate CSV")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quote-%d.csv"`, detail.ID))
	_, _ = buf.WriteTo(w)
}

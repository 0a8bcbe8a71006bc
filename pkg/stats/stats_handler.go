package stats

import (
	"encoding/json"
	"net/http"

	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/ledger"
)

type CategoryAmountDTO struct {
	Category   string      `json:"category"`
	Amount     json.Number `json:"amount"`
	Percentage float64     `json:"percentage"`
}

type TrendPointDTO struct {
	Date   string      `json:"date"`
	Amount json.Number `json:"amount"`
	Label  string      `json:"label"`
}

type ProgressDTO struct {
	Total      json.Number `json:"total"`
	Budget     json.Number `json:"budget"`
	Remaining  json.Number `json:"remaining"`
	Percentage float64     `json:"percentage"`
	Capped     float64     `json:"capped"`
	Level      string      `json:"level"`
	OverBudget bool        `json:"overBudget"`
}

type SummaryDTO struct {
	IsFiltered   bool                `json:"isFiltered"`
	ExpenseCount int                 `json:"expenseCount"`
	Total        json.Number         `json:"total"`
	Progress     ProgressDTO         `json:"progress"`
	Breakdown    []CategoryAmountDTO `json:"breakdown"`
	Trend        []TrendPointDTO     `json:"trend"`
}

type StatsHandler struct {
	statsService     StatsService
	registry         *category.Registry
	csvStatsRenderer StatsRenderer
}

func NewStatsHandler(statsService StatsService, registry *category.Registry, csvStatsRenderer StatsRenderer) *StatsHandler {
	return &StatsHandler{statsService, registry, csvStatsRenderer}
}

func (handler *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	spec, err := ParseFilter(r.URL.Query(), handler.registry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	summary := handler.statsService.GetSummary(r.Context(), spec)

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := handler.csvStatsRenderer.RenderSummary(summary)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(csv)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(SummaryToDTO(summary)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListExpenses serves the filtered ledger.
func (handler *StatsHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	spec, err := ParseFilter(r.URL.Query(), handler.registry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	expenses := handler.statsService.FilteredExpenses(r.Context(), spec)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ledger.ExpensesToDTO(expenses)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func SummaryToDTO(summary Summary) SummaryDTO {
	breakdown := make([]CategoryAmountDTO, 0, len(summary.Breakdown))
	for _, row := range summary.Breakdown {
		breakdown = append(breakdown, CategoryAmountDTO{
			Category:   string(row.Category),
			Amount:     json.Number(row.Amount.String()),
			Percentage: row.Percentage,
		})
	}

	trend := make([]TrendPointDTO, 0, len(summary.Trend))
	for _, point := range summary.Trend {
		trend = append(trend, TrendPointDTO{
			Date:   point.Date.String(),
			Amount: json.Number(point.Amount.String()),
			Label:  point.Label,
		})
	}

	p := summary.Progress
	return SummaryDTO{
		IsFiltered:   summary.IsFiltered,
		ExpenseCount: len(summary.Expenses),
		Total:        json.Number(summary.Total.String()),
		Progress: ProgressDTO{
			Total:      json.Number(p.Total.String()),
			Budget:     json.Number(p.Budget.String()),
			Remaining:  json.Number(p.Remaining.String()),
			Percentage: p.Percentage,
			Capped:     p.Capped,
			Level:      string(p.Level),
			OverBudget: p.OverBudget,
		},
		Breakdown: breakdown,
		Trend:     trend,
	}
}

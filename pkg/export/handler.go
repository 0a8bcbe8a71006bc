package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/stats"
	log "github.com/sirupsen/logrus"
)

type SheetsResultDTO struct {
	Rows int `json:"rows"`
}

type Handler struct {
	stats    stats.StatsService
	registry *category.Registry
	sheets   SheetsAppender
}

// NewHandler accepts a nil appender when Google Sheets is not configured.
func NewHandler(statsService stats.StatsService, registry *category.Registry, sheets SheetsAppender) *Handler {
	return &Handler{stats: statsService, registry: registry, sheets: sheets}
}

// Download serves the filtered ledger as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	format, err := ParseFormat(query.Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	filter, err := stats.ParseFilter(query, h.registry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := Render(format, h.stats.FilteredExpenses(r.Context(), filter))
	if err != nil {
		log.Errorf("export failed: %v", err)
		http.Error(w, "Failed to export expenses", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, Filename(h.stats.Today(), format)))
	if _, err := w.Write(data); err != nil {
		log.Warnf("failed to write export response: %v", err)
	}
}

func (h *Handler) ExportToSheets(w http.ResponseWriter, r *http.Request) {
	if h.sheets == nil {
		http.Error(w, ErrSheetsNotConfigured.Error(), http.StatusServiceUnavailable)
		return
	}
	filter, err := stats.ParseFilter(r.URL.Query(), h.registry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rows, err := h.sheets.Append(r.Context(), h.stats.FilteredExpenses(r.Context(), filter))
	if err != nil {
		log.Errorf("sheets export failed: %v", err)
		status := http.StatusBadGateway
		if errors.Is(err, ErrSheetsNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, "Failed to export expenses to Google Sheets", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(SheetsResultDTO{Rows: rows}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package kvstore

import (
	"encoding/json"
	"net/http"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

type ThemeDTO struct {
	Theme string `json:"theme"`
}

type ThemeHandler struct {
	store Store
}

func NewThemeHandler(store Store) *ThemeHandler {
	return &ThemeHandler{store: store}
}

func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	theme := GetOr(r.Context(), h.store, KeyTheme, ThemeLight)
	if theme != ThemeLight && theme != ThemeDark {
		theme = ThemeLight
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ThemeDTO{Theme: theme}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ThemeHandler) Set(w http.ResponseWriter, r *http.Request) {
	var dto ThemeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if dto.Theme != ThemeLight && dto.Theme != ThemeDark {
		http.Error(w, "Theme must be 'light' or 'dark'", http.StatusBadRequest)
		return
	}

	if err := Put(r.Context(), h.store, KeyTheme, dto.Theme); err != nil {
		http.Error(w, "Failed to store theme", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

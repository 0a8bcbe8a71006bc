package category

import (
	"encoding/json"
	"net/http"
)

type ConfigDTO struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry}
}

func (handler *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	configs := handler.registry.List()
	dtos := make([]ConfigDTO, 0, len(configs))
	for _, c := range configs {
		dtos = append(dtos, ConfigDTO{Name: string(c.Name), Color: c.Color, Icon: c.Icon})
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

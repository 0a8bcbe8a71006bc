package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/stats"
)

type MessageDTO struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type FilterDTO struct {
	Text       string   `json:"text"`
	Categories []string `json:"categories"`
	From       string   `json:"from"`
	To         string   `json:"to"`
}

type SubmitDTO struct {
	Text   string    `json:"text"`
	Filter FilterDTO `json:"filter"`
}

type SubmitResultDTO struct {
	Messages []MessageDTO `json:"messages"`
	State    string       `json:"state"`
}

type StateDTO struct {
	State string `json:"state"`
}

type Handler struct {
	pipeline *Pipeline
	registry *category.Registry
}

func NewHandler(pipeline *Pipeline, registry *category.Registry) *Handler {
	return &Handler{pipeline: pipeline, registry: registry}
}

// Messages serves the chat history. With format=html the text is escaped and line breaks become <br />.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	asHTML := r.URL.Query().Get("format") == "html"

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(messagesToDTO(h.pipeline.Messages(), asHTML)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(StateDTO{State: string(h.pipeline.State())}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto SubmitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	filter, err := stats.ParseFilter(dto.Filter.query(), h.registry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	appended, err := h.pipeline.Submit(r.Context(), dto.Text, filter)
	if errors.Is(err, ErrBusy) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	result := SubmitResultDTO{
		Messages: messagesToDTO(appended, false),
		State:    string(h.pipeline.State()),
	}
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (f FilterDTO) query() url.Values {
	query := url.Values{}
	query.Set("text", f.Text)
	query["category"] = f.Categories
	query.Set("from", f.From)
	query.Set("to", f.To)
	return query
}

func messagesToDTO(messages []Message, asHTML bool) []MessageDTO {
	dtos := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		text := m.Text
		if asHTML {
			text = FormatHTML(text)
		}
		dtos = append(dtos, MessageDTO{Role: string(m.Role), Text: text})
	}
	return dtos
}

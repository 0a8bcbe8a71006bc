package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type BudgetDTO struct {
	Budget json.Number `json:"budget"`
}

type DeleteResultDTO struct {
	Deleted int `json:"deleted"`
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	draft, err := DTOToDraft(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.store.Add(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(ExpenseToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	expense, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ExpenseToDTO(expense)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var dto ExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if dto.ID != "" && dto.ID != id {
		http.Error(w, "Invalid expense id in request body", http.StatusBadRequest)
		return
	}
	dto.ID = id

	expense, err := DTOToExpense(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.Update(r.Context(), expense); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ExpenseToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Delete removes the expenses listed in repeated id query parameters. The request must carry
// confirm=true, otherwise nothing is touched.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	ids := query["id"]
	if len(ids) == 0 {
		http.Error(w, "At least one id is required", http.StatusBadRequest)
		return
	}
	if query.Get("confirm") != "true" {
		http.Error(w, "Deletion must be confirmed with confirm=true", http.StatusPreconditionRequired)
		return
	}

	deleted, err := h.store.Delete(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}
	log.Debugf("Deleted %d of %d requested expense(s)", deleted, len(ids))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(DeleteResultDTO{Deleted: deleted}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	budget := h.store.Budget(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(BudgetDTO{Budget: json.Number(budget.String())}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetBudget(w http.ResponseWriter, r *http.Request) {
	var dto BudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	budget, err := decimal.NewFromString(string(dto.Budget))
	if err != nil {
		http.Error(w, "Budget must be a number", http.StatusBadRequest)
		return
	}

	if err := h.store.SetBudget(r.Context(), budget); err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(BudgetDTO{Budget: json.Number(budget.String())}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrExpenseNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		log.Errorf("ledger request failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Categories
	r.HandleFunc("/api/categories", deps.CategoryHandler.List).Methods("GET")

	// Expenses
	r.HandleFunc("/api/expenses", deps.StatsHandler.ListExpenses).Methods("GET")
	r.HandleFunc("/api/expenses", deps.LedgerHandler.Create).Methods("POST")
	r.HandleFunc("/api/expenses", deps.LedgerHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/expenses/{id}", deps.LedgerHandler.Get).Methods("GET")
	r.HandleFunc("/api/expenses/{id}", deps.LedgerHandler.Update).Methods("PUT")

	// Budget
	r.HandleFunc("/api/budget", deps.LedgerHandler.GetBudget).Methods("GET")
	r.HandleFunc("/api/budget", deps.LedgerHandler.SetBudget).Methods("PUT")

	// Stats
	r.HandleFunc("/api/stats", deps.StatsHandler.GetStats).Methods("GET")

	// Export
	r.HandleFunc("/api/export", deps.ExportHandler.Download).Methods("GET")
	r.HandleFunc("/api/export/sheets", deps.ExportHandler.ExportToSheets).Methods("POST")

	// Chat
	r.HandleFunc("/api/chat", deps.ChatHandler.Submit).Methods("POST")
	r.HandleFunc("/api/chat/messages", deps.ChatHandler.Messages).Methods("GET")
	r.HandleFunc("/api/chat/state", deps.ChatHandler.State).Methods("GET")

	// Theme
	r.HandleFunc("/api/theme", deps.ThemeHandler.Get).Methods("GET")
	r.HandleFunc("/api/theme", deps.ThemeHandler.Set).Methods("PUT")

	// Live updates
	if deps.Hub != nil {
		r.HandleFunc("/api/ws", deps.Hub.HandleRequest).Methods("GET")
	}
}

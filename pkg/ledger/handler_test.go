package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, *StoreImpl, context.Context) {
	store, ctx, _, _ := setupStoreTest(t)
	handler := NewHandler(store)
	router := mux.NewRouter()
	router.HandleFunc("/api/expenses", handler.Create).Methods("POST")
	router.HandleFunc("/api/expenses", handler.Delete).Methods("DELETE")
	router.HandleFunc("/api/expenses/{id}", handler.Get).Methods("GET")
	router.HandleFunc("/api/expenses/{id}", handler.Update).Methods("PUT")
	router.HandleFunc("/api/budget", handler.GetBudget).Methods("GET")
	router.HandleFunc("/api/budget", handler.SetBudget).Methods("PUT")
	return router, store, ctx
}

func serve(router *mux.Router, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_Create(t *testing.T) {
	t.Run("should create expense", func(t *testing.T) {
		router, store, ctx := setupHandlerTest(t)

		rr := serve(router, "POST", "/api/expenses",
			`{"description":"Coffee","amount":4.5,"category":"Food","date":"2024-01-10"}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"id":"id-1","description":"Coffee","amount":4.5,"category":"Food","date":"2024-01-10"}`, rr.Body.String())
		assert.Len(t, store.List(ctx), 1)
	})

	tests := []struct {
		name string
		body string
	}{
		{"unknown category", `{"description":"Coffee","amount":4.5,"category":"Pets","date":"2024-01-10"}`},
		{"zero amount", `{"description":"Coffee","amount":0,"category":"Food","date":"2024-01-10"}`},
		{"bad date", `{"description":"Coffee","amount":1,"category":"Food","date":"Jan 10"}`},
		{"empty description", `{"description":"","amount":1,"category":"Food","date":"2024-01-10"}`},
		{"malformed json", `{"description":`},
	}
	for _, tt := range tests {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			router, store, ctx := setupHandlerTest(t)

			rr := serve(router, "POST", "/api/expenses", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Empty(t, store.List(ctx))
		})
	}
}

func TestHandler_Update(t *testing.T) {
	t.Run("should update existing expense", func(t *testing.T) {
		router, store, ctx := setupHandlerTest(t)
		created, err := store.Add(ctx, draft("Coffee", "4.5", category.Food, NewDate(2024, 1, 10)))
		require.NoError(t, err)

		rr := serve(router, "PUT", "/api/expenses/"+created.ID,
			`{"description":"Tea","amount":"3.20","category":"Food","date":"2024-01-11"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		var dto ExpenseDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dto))
		assert.Equal(t, created.ID, dto.ID)
		assert.Equal(t, "Tea", dto.Description)
		assert.Equal(t, "3.2", dto.Amount.String())
		assert.Equal(t, "2024-01-11", dto.Date)
	})

	t.Run("should return not found for unknown id", func(t *testing.T) {
		router, _, _ := setupHandlerTest(t)

		rr := serve(router, "PUT", "/api/expenses/missing",
			`{"description":"Tea","amount":3,"category":"Food","date":"2024-01-11"}`)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("should reject mismatched id", func(t *testing.T) {
		router, _, _ := setupHandlerTest(t)

		rr := serve(router, "PUT", "/api/expenses/a",
			`{"id":"b","description":"Tea","amount":3,"category":"Food","date":"2024-01-11"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_Delete(t *testing.T) {
	t.Run("should require confirmation", func(t *testing.T) {
		router, store, ctx := setupHandlerTest(t)
		created, _ := store.Add(ctx, draft("Coffee", "4.5", category.Food, NewDate(2024, 1, 10)))

		rr := serve(router, "DELETE", "/api/expenses?id="+created.ID, "")

		assert.Equal(t, http.StatusPreconditionRequired, rr.Code)
		assert.Len(t, store.List(ctx), 1)
	})

	t.Run("should delete confirmed ids", func(t *testing.T) {
		router, store, ctx := setupHandlerTest(t)
		first, _ := store.Add(ctx, draft("Coffee", "4.5", category.Food, NewDate(2024, 1, 10)))
		second, _ := store.Add(ctx, draft("Bus", "2", category.Transport, NewDate(2024, 1, 10)))

		rr := serve(router, "DELETE", "/api/expenses?id="+first.ID+"&id="+second.ID+"&id=gone&confirm=true", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"deleted":2}`, rr.Body.String())
		assert.Empty(t, store.List(ctx))
	})

	t.Run("should require ids", func(t *testing.T) {
		router, _, _ := setupHandlerTest(t)

		rr := serve(router, "DELETE", "/api/expenses?confirm=true", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_Budget(t *testing.T) {
	router, _, _ := setupHandlerTest(t)

	rr := serve(router, "GET", "/api/budget", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"budget":1000}`, rr.Body.String())

	rr = serve(router, "PUT", "/api/budget", `{"budget":1250.75}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"budget":1250.75}`, rr.Body.String())

	rr = serve(router, "PUT", "/api/budget", `{"budget":-5}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = serve(router, "GET", "/api/budget", "")
	assert.JSONEq(t, `{"budget":1250.75}`, rr.Body.String())
}

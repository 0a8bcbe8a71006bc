package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/shopspring/decimal"
)

// ExpenseDTO is the wire and storage shape of an expense.
type ExpenseDTO struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
}

func ExpenseToDTO(e Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		Description: e.Description,
		Amount:      json.Number(e.Amount.String()),
		Category:    string(e.Category),
		Date:        e.Date.String(),
	}
}

func ExpensesToDTO(expenses []Expense) []ExpenseDTO {
	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, ExpenseToDTO(e))
	}
	return dtos
}

// DTOToDraft converts the wire fields. It does not check the expense invariants, use Validate for that.
func DTOToDraft(dto ExpenseDTO) (Draft, error) {
	amount, err := decimal.NewFromString(string(dto.Amount))
	if err != nil {
		return Draft{}, fmt.Errorf("%w: %q", ErrInvalidAmount, dto.Amount)
	}
	date, err := ParseDate(dto.Date)
	if err != nil {
		return Draft{}, err
	}
	return Draft{
		Description: dto.Description,
		Amount:      amount,
		Category:    category.Name(dto.Category),
		Date:        date,
	}, nil
}

func DTOToExpense(dto ExpenseDTO) (Expense, error) {
	draft, err := DTOToDraft(dto)
	if err != nil {
		return Expense{}, err
	}
	return draft.withID(dto.ID), nil
}

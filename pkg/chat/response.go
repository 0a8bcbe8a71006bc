package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/ledger"
	"github.com/shopspring/decimal"
)

var ErrMalformedResponse = errors.New("malformed completion response")

type response struct {
	Intent        Intent
	Items         []json.RawMessage
	Answer        string
	Clarification string
}

// decodeResponse checks the top-level shape only. Items are validated one by one later.
func decodeResponse(text string) (response, error) {
	text = stripCodeFence(text)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if fields == nil {
		return response{}, fmt.Errorf("%w: not an object", ErrMalformedResponse)
	}

	var resp response
	var intent string
	if err := decodeString(fields, "intent", &intent); err != nil {
		return response{}, err
	}
	resp.Intent = Intent(intent)
	if !slices.Contains(intents, intent) {
		return response{}, fmt.Errorf("%w: unknown intent %q", ErrMalformedResponse, intent)
	}

	if raw, ok := fields["expenses"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &resp.Items); err != nil {
			return response{}, fmt.Errorf("%w: expenses is not a list", ErrMalformedResponse)
		}
	}
	if err := decodeString(fields, "answer", &resp.Answer); err != nil {
		return response{}, err
	}
	if err := decodeString(fields, "clarification", &resp.Clarification); err != nil {
		return response{}, err
	}
	return resp, nil
}

func decodeString(fields map[string]json.RawMessage, name string, target *string) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %s is not a string", ErrMalformedResponse, name)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

type rawItem struct {
	Amount      any `json:"amount"`
	Description any `json:"description"`
	Category    any `json:"category"`
	Date        any `json:"date"`
}

// parseItem turns one untrusted expense item into a validated draft.
func parseItem(raw json.RawMessage, registry *category.Registry) (ledger.Draft, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var item rawItem
	if err := decoder.Decode(&item); err != nil {
		return ledger.Draft{}, errors.New("not an expense object")
	}

	number, ok := item.Amount.(json.Number)
	if !ok {
		return ledger.Draft{}, errors.New("amount is missing or not a number")
	}
	amount, err := decimal.NewFromString(number.String())
	if err != nil {
		return ledger.Draft{}, fmt.Errorf("amount %q is not a number", number)
	}

	description, ok := item.Description.(string)
	if !ok {
		return ledger.Draft{}, errors.New("description is missing")
	}

	rawCategory, ok := item.Category.(string)
	if !ok {
		return ledger.Draft{}, errors.New("category is missing")
	}
	name, err := registry.Parse(rawCategory)
	if err != nil {
		return ledger.Draft{}, fmt.Errorf("unknown category %q", rawCategory)
	}

	rawDate, ok := item.Date.(string)
	if !ok {
		return ledger.Draft{}, errors.New("date is missing")
	}
	date, err := ledger.ParseDate(rawDate)
	if err != nil {
		return ledger.Draft{}, fmt.Errorf("date %q is not YYYY-MM-DD", rawDate)
	}

	return ledger.Validate(ledger.Draft{
		Description: description,
		Amount:      amount,
		Category:    name,
		Date:        date,
	}, registry)
}

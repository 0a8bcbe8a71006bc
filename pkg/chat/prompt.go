package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/completion"
	"github.com/klokku/pocketbudget/pkg/ledger"
)

type Intent string

const (
	IntentQuestion     Intent = "QUESTION"
	IntentExpenseEntry Intent = "EXPENSE_ENTRY"
	IntentUnclear      Intent = "UNCLEAR"
)

var intents = []string{string(IntentQuestion), string(IntentExpenseEntry), string(IntentUnclear)}

// snapshotExpense is the model's view of a ledger record, without the id.
type snapshotExpense struct {
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
}

func buildInstructions(today ledger.Date, names []category.Name) string {
	return fmt.Sprintf(`You are a dual-function personal finance assistant. Your capabilities are:
1.  **Expense Entry:** Parse user messages to create an array of new expense entries. Find all valid expenses mentioned.
2.  **Answering Questions:** Analyze provided JSON expense data to answer questions about spending.

**Instructions:**
- First, determine the user's intent: Are they trying to add one or more expenses ('EXPENSE_ENTRY') or ask a question ('QUESTION')?
- If the intent is unclear, classify it as 'UNCLEAR'.
- Today's date is %s. Use this for relative dates like 'today' or 'yesterday'.
- Valid expense categories are: [%s]. If the user provides a category not on this list, map it to the closest valid one or 'Other'.
- Respond ONLY in the specified JSON format.`, today, strings.Join(namesToStrings(names), ", "))
}

func buildSchema(names []category.Name) *completion.Schema {
	return &completion.Schema{
		Type: completion.TypeObject,
		Properties: map[string]*completion.Schema{
			"intent": {
				Type:        completion.TypeString,
				Enum:        intents,
				Description: "The user's primary intent.",
			},
			"expenses": {
				Type:        completion.TypeArray,
				Description: "An array of expense objects parsed from the user's message.",
				Items: &completion.Schema{
					Type: completion.TypeObject,
					Properties: map[string]*completion.Schema{
						"amount":      {Type: completion.TypeNumber, Description: "The numeric amount of the expense."},
						"description": {Type: completion.TypeString, Description: "A brief description of the expense."},
						"category": {
							Type:        completion.TypeString,
							Enum:        namesToStrings(names),
							Description: "The category of the expense from the provided list.",
						},
						"date": {Type: completion.TypeString, Description: "The date of the expense in YYYY-MM-DD format."},
					},
					Required: []string{"amount", "description", "category", "date"},
				},
			},
			"answer": {
				Type:        completion.TypeString,
				Description: "A concise, helpful answer if the intent is 'QUESTION'.",
			},
			"clarification": {
				Type:        completion.TypeString,
				Description: "A question to ask the user if details are incomplete or the intent is unclear.",
			},
		},
		Required: []string{"intent"},
	}
}

func buildPrompt(snapshot []ledger.Expense, text string) (string, error) {
	records := make([]snapshotExpense, 0, len(snapshot))
	for _, e := range snapshot {
		records = append(records, snapshotExpense{
			Description: e.Description,
			Amount:      json.Number(e.Amount.String()),
			Category:    string(e.Category),
			Date:        e.Date.String(),
		})
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode ledger snapshot: %w", err)
	}

	return fmt.Sprintf(`Based on the rules and the data below, process the user's request.

Current Filtered Expense Data (for Q&A):
%s

User's Request:
%q`, data, text), nil
}

func buildRequest(snapshot []ledger.Expense, today ledger.Date, names []category.Name, text string) (completion.Request, error) {
	prompt, err := buildPrompt(snapshot, text)
	if err != nil {
		return completion.Request{}, err
	}
	return completion.Request{
		Instructions: buildInstructions(today, names),
		Prompt:       prompt,
		Schema:       buildSchema(names),
	}, nil
}

func namesToStrings(names []category.Name) []string {
	result := make([]string, 0, len(names))
	for _, n := range names {
		result = append(result, string(n))
	}
	return result
}

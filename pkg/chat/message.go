package chat

import (
	"encoding/json"
	"html"
	"strings"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

const Greeting = "Hello! Ask about your spending or add expenses (e.g., 'spent 15 on lunch and 30 for gas')."

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel || r == RoleSystem
}

// UnmarshalJSON accepts "assistant" as another name for the model role.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "assistant" {
		raw = string(RoleModel)
	}
	*r = Role(raw)
	return nil
}

// Message text is plain text; line breaks are "\n".
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

func defaultMessages() []Message {
	return []Message{{Role: RoleSystem, Text: Greeting}}
}

// FormatHTML escapes text and turns line breaks into <br /> so it can be embedded as markup.
func FormatHTML(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br />")
}

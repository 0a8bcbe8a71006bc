package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klokku/pocketbudget/pkg/ledger"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("unknown export format")

const csvHeader = "id,description,amount,category,date"

// ParseFormat defaults to CSV when raw is empty.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Filename is expenses-YYYY-MM-DD.<format>.
func Filename(today ledger.Date, format Format) string {
	return fmt.Sprintf("expenses-%s.%s", today, format)
}

// CSV renders one row per expense below the header. The description is always quoted.
// Rows are separated by "\n" and there is no trailing line break.
func CSV(expenses []ledger.Expense) []byte {
	rows := make([]string, 0, len(expenses)+1)
	rows = append(rows, csvHeader)
	for _, e := range expenses {
		rows = append(rows, strings.Join([]string{
			e.ID,
			quote(e.Description),
			e.Amount.String(),
			string(e.Category),
			e.Date.String(),
		}, ","))
	}
	return []byte(strings.Join(rows, "\n"))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// JSON renders the records as an array indented by two spaces.
func JSON(expenses []ledger.Expense) ([]byte, error) {
	data, err := json.MarshalIndent(ledger.ExpensesToDTO(expenses), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode expenses: %w", err)
	}
	return data, nil
}

func Render(format Format, expenses []ledger.Expense) ([]byte, error) {
	switch format {
	case FormatCSV:
		return CSV(expenses), nil
	case FormatJSON:
		return JSON(expenses)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile renders expenses into dir under the dated file name and returns the written path.
func WriteFile(dir string, today ledger.Date, format Format, expenses []ledger.Expense) (string, error) {
	data, err := Render(format, expenses)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, Filename(today, format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

package stats

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/klokku/pocketbudget/pkg/ledger"
)

// FilterSpec narrows the ledger. The zero value matches everything.
type FilterSpec struct {
	Text       string
	Categories []category.Name
	// StartDate and EndDate are inclusive; a zero date leaves that side open.
	StartDate ledger.Date
	EndDate   ledger.Date
}

func (f FilterSpec) IsEmpty() bool {
	return f.Text == "" && len(f.Categories) == 0 && f.StartDate.IsZero() && f.EndDate.IsZero()
}

// NormalizeDate maps a calendar date to midnight in loc. Stored dates and filter bounds
// both go through it before being compared.
func NormalizeDate(d ledger.Date, loc *time.Location) time.Time {
	return d.Midnight(loc)
}

func endOfDay(d ledger.Date, loc *time.Location) time.Time {
	return NormalizeDate(d, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// Filter returns the expenses matching every criterion of spec, keeping their order.
func Filter(expenses []ledger.Expense, spec FilterSpec, loc *time.Location) []ledger.Expense {
	text := strings.ToLower(spec.Text)

	var start, end time.Time
	if !spec.StartDate.IsZero() {
		start = NormalizeDate(spec.StartDate, loc)
	}
	if !spec.EndDate.IsZero() {
		end = endOfDay(spec.EndDate, loc)
	}

	result := make([]ledger.Expense, 0, len(expenses))
	for _, e := range expenses {
		if text != "" && !strings.Contains(strings.ToLower(e.Description), text) {
			continue
		}
		if len(spec.Categories) > 0 && !slices.Contains(spec.Categories, e.Category) {
			continue
		}
		date := NormalizeDate(e.Date, loc)
		if !start.IsZero() && date.Before(start) {
			continue
		}
		if !end.IsZero() && date.After(end) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// ParseFilter reads text, category (repeatable), from and to query parameters.
func ParseFilter(query url.Values, registry *category.Registry) (FilterSpec, error) {
	spec := FilterSpec{Text: query.Get("text")}

	for _, raw := range query["category"] {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		name, err := registry.Parse(raw)
		if err != nil {
			return FilterSpec{}, err
		}
		if !slices.Contains(spec.Categories, name) {
			spec.Categories = append(spec.Categories, name)
		}
	}

	var err error
	if raw := query.Get("from"); raw != "" {
		if spec.StartDate, err = ledger.ParseDate(raw); err != nil {
			return FilterSpec{}, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if raw := query.Get("to"); raw != "" {
		if spec.EndDate, err = ledger.ParseDate(raw); err != nil {
			return FilterSpec{}, fmt.Errorf("invalid to date: %w", err)
		}
	}
	return spec, nil
}

// Query is the inverse of ParseFilter.
func (f FilterSpec) Query() url.Values {
	query := url.Values{}
	if f.Text != "" {
		query.Set("text", f.Text)
	}
	for _, c := range f.Categories {
		query.Add("category", string(c))
	}
	if !f.StartDate.IsZero() {
		query.Set("from", f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		query.Set("to", f.EndDate.String())
	}
	return query
}

package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/klokku/pocketbudget/pkg/category"
	"github.com/shopspring/decimal"
)

var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrInvalidDate      = errors.New("invalid date")
	ErrNegativeBudget   = errors.New("budget cannot be negative")
)

const DateLayout = "2006-01-02"

// Date is a calendar date without time of day. The embedded time is always midnight UTC.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf takes the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Midnight returns the start of d in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Draft is an expense that has not been stored yet.
type Draft struct {
	Description string
	Amount      decimal.Decimal
	Category    category.Name
	Date        Date
}

type Expense struct {
	ID          string
	Description string
	Amount      decimal.Decimal
	Category    category.Name
	Date        Date
}

func (e Expense) Draft() Draft {
	return Draft{
		Description: e.Description,
		Amount:      e.Amount,
		Category:    e.Category,
		Date:        e.Date,
	}
}

func (d Draft) withID(id string) Expense {
	return Expense{
		ID:          id,
		Description: d.Description,
		Amount:      d.Amount,
		Category:    d.Category,
		Date:        d.Date,
	}
}

// Validate checks a draft against the expense invariants and returns it with a trimmed description.
func Validate(d Draft, registry *category.Registry) (Draft, error) {
	d.Description = strings.TrimSpace(d.Description)
	if d.Description == "" {
		return d, ErrEmptyDescription
	}
	if !d.Amount.IsPositive() {
		return d, fmt.Errorf("%w: %s", ErrInvalidAmount, d.Amount)
	}
	if _, err := registry.Lookup(d.Category); err != nil {
		return d, err
	}
	if d.Date.IsZero() {
		return d, fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	return d, nil
}

// IsValidationError reports whether err was caused by invalid input rather than a storage failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrEmptyDescription) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrNegativeBudget) ||
		errors.Is(err, category.ErrCategoryNotFound)
}

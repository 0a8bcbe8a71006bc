package category

import (
	"errors"
	"fmt"
	"strings"
)

var ErrCategoryNotFound = errors.New("category not found")

// Name is a category key. Values outside the registry are never accepted into the ledger.
type Name string

const (
	Food          Name = "Food"
	Transport     Name = "Transport"
	Entertainment Name = "Entertainment"
	Utilities     Name = "Utilities"
	Shopping      Name = "Shopping"
	Rent          Name = "Rent"
	Health        Name = "Health"
	Other         Name = "Other"
)

type Config struct {
	Name  Name
	Color string
	Icon  string
}

// Registry is an ordered, immutable set of categories. Insertion order is the display order.
type Registry struct {
	configs []Config
	byName  map[Name]Config
}

func NewRegistry(configs []Config) (*Registry, error) {
	r := &Registry{
		configs: make([]Config, 0, len(configs)),
		byName:  make(map[Name]Config, len(configs)),
	}
	for _, c := range configs {
		if strings.TrimSpace(string(c.Name)) == "" {
			return nil, fmt.Errorf("category name cannot be empty")
		}
		if _, exists := r.byName[c.Name]; exists {
			return nil, fmt.Errorf("duplicate category %q", c.Name)
		}
		r.configs = append(r.configs, c)
		r.byName[c.Name] = c
	}
	if len(r.configs) == 0 {
		return nil, fmt.Errorf("registry needs at least one category")
	}
	return r, nil
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := NewRegistry([]Config{
		{Name: Food, Color: "#ffc107", Icon: "las la-utensils"},
		{Name: Transport, Color: "#17a2b8", Icon: "las la-bus"},
		{Name: Entertainment, Color: "#6f42c1", Icon: "las la-film"},
		{Name: Utilities, Color: "#fd7e14", Icon: "las la-bolt"},
		{Name: Shopping, Color: "#20c997", Icon: "las la-shopping-bag"},
		{Name: Rent, Color: "#e83e8c", Icon: "las la-home"},
		{Name: Health, Color: "#dc3545", Icon: "las la-heartbeat"},
		{Name: Other, Color: "#6c757d", Icon: "las la-ellipsis-h"},
	})
	if err != nil {
		panic(err)
	}
	return r
}

// List returns a copy of the categories in display order.
func (r *Registry) List() []Config {
	out := make([]Config, len(r.configs))
	copy(out, r.configs)
	return out
}

func (r *Registry) Names() []Name {
	names := make([]Name, 0, len(r.configs))
	for _, c := range r.configs {
		names = append(names, c.Name)
	}
	return names
}

func (r *Registry) Lookup(name Name) (Config, error) {
	c, ok := r.byName[name]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	return c, nil
}

// Parse resolves a raw string to a registered Name. Matching is exact.
func (r *Registry) Parse(raw string) (Name, error) {
	c, err := r.Lookup(Name(strings.TrimSpace(raw)))
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

// Position returns the display index of name, or -1.
func (r *Registry) Position(name Name) int {
	for i, c := range r.configs {
		if c.Name == name {
			return i
		}
	}
	return -1
}

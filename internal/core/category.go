package core

import (
	"encoding/json"
	"strings"
)

// CategoryKind discriminates the fixed standard categories from
// user-defined ones.
type CategoryKind uint8

const (
	CategoryStandard CategoryKind = iota
	CategoryCustom
)

// TotalCategory is the budget category that aggregates all spending
// regardless of expense category.
const TotalCategory = "total"

var standardCategories = []string{
	"Food",
	"Transportation",
	"Entertainment",
	"Shopping",
	"Utilities",
	"Healthcare",
	"Education",
	"Travel",
	"Other",
}

// Category names either a standard or a custom category. Both kinds
// behave identically everywhere a category is consumed; the kind only
// records where the name came from. The stored and wire form is the
// bare name string.
type Category struct {
	Kind CategoryKind
	Name string
}

// ParseCategory classifies a name as standard or custom. Standard
// names match exactly; everything else, including different casing of
// a standard name, is custom.
func ParseCategory(name string) Category {
	name = strings.TrimSpace(name)
	for _, s := range standardCategories {
		if s == name {
			return Category{Kind: CategoryStandard, Name: s}
		}
	}
	return Category{Kind: CategoryCustom, Name: name}
}

// StandardCategories returns the fixed category set in display order.
func StandardCategories() []string {
	out := make([]string, len(standardCategories))
	copy(out, standardCategories)
	return out
}

func (c Category) IsZero() bool {
	return c.Name == ""
}

// IsTotal reports whether this is the all-spending budget marker.
func (c Category) IsTotal() bool {
	return c.Name == TotalCategory
}

// Matches compares categories by name. Standard and custom categories
// with the same name are the same category.
func (c Category) Matches(other Category) bool {
	return c.Name == other.Name
}

func (c Category) String() string {
	return c.Name
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Name)
}

func (c *Category) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	*c = ParseCategory(name)
	return nil
}

package core

import (
	"errors"
	"fmt"
	"strings"
)

// RuleOp enumerates the rule operators.
type RuleOp string

const (
	RuleContains RuleOp = "contains"
	RuleEquals   RuleOp = "equals"
	RuleRange    RuleOp = "range"
)

// RuleField names the expense field a rule inspects.
type RuleField string

const (
	FieldDescription RuleField = "description"
	FieldMerchant    RuleField = "merchant"
	FieldAmount      RuleField = "amount"
)

// CategoryRule assigns a category to matching expenses during import.
// The operator selects which value fields are meaningful: contains and
// equals compare Value against a text field, range bounds the amount
// with Min and Max.
type CategoryRule struct {
	ID       string    `json:"id"`
	Field    RuleField `json:"field"`
	Op       RuleOp    `json:"op"`
	Value    string    `json:"value,omitempty"`
	Min      float64   `json:"min,omitempty"`
	Max      float64   `json:"max,omitempty"`
	Category Category  `json:"category"`
}

func (r CategoryRule) Validate() error {
	switch r.Op {
	case RuleContains, RuleEquals:
		if r.Field != FieldDescription && r.Field != FieldMerchant {
			return fmt.Errorf("%s rules apply to text fields, got %q", r.Op, r.Field)
		}
		if strings.TrimSpace(r.Value) == "" {
			return errors.New("rule value cannot be empty")
		}
	case RuleRange:
		if r.Field != FieldAmount {
			return fmt.Errorf("range rules apply to the amount field, got %q", r.Field)
		}
		if r.Min > r.Max {
			return errors.New("rule range is inverted")
		}
	default:
		return fmt.Errorf("unknown rule operator: %q", r.Op)
	}
	if r.Category.IsZero() {
		return ErrEmptyCategory
	}
	return nil
}

// Matches dispatches on the operator. Text comparisons are
// case-insensitive; range bounds are inclusive.
func (r CategoryRule) Matches(e Expense) bool {
	switch r.Op {
	case RuleContains:
		return strings.Contains(strings.ToLower(r.textField(e)), strings.ToLower(r.Value))
	case RuleEquals:
		return strings.EqualFold(r.textField(e), r.Value)
	case RuleRange:
		return e.Amount >= r.Min && e.Amount <= r.Max
	}
	return false
}

func (r CategoryRule) textField(e Expense) string {
	if r.Field == FieldMerchant {
		return e.Merchant
	}
	return e.Description
}

// ApplyRules returns the category of the first matching rule in order.
func ApplyRules(rules []CategoryRule, e Expense) (Category, bool) {
	for _, r := range rules {
		if r.Matches(e) {
			return r.Category, true
		}
	}
	return Category{}, false
}

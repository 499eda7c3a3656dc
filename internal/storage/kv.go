// Package storage implements the persistence collaborator: a keyed
// store of JSON documents with swappable backends. Callers own the
// (de)serialization; a missing key is reported with ErrKeyNotFound and
// is always treated as "use the default", never as a failure.
package storage

import (
	"context"
	"errors"
)

// Keys under which the entity collections are persisted.
const (
	KeyExpenses         = "expenses"
	KeyBudgets          = "budgets"
	KeyCustomCategories = "customCategories"
	KeyBudgetTemplates  = "budgetTemplates"
	KeyRecurring        = "recurringExpenses"
	KeyCategoryRules    = "categoryRules"
)

// ErrKeyNotFound reports an absent key.
var ErrKeyNotFound = errors.New("key not found")

// KV is a key-value store of JSON document strings.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

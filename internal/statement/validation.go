package statement

import (
	"fmt"
	"strings"
)

// CategoryValidator checks transaction categories against the catalog.
type CategoryValidator struct {
	categories map[string]Category // normalized name -> catalog entry
}

// NewCategoryValidator builds a validator over catalog.
func NewCategoryValidator(catalog []Category) *CategoryValidator {
	v := &CategoryValidator{categories: make(map[string]Category, len(catalog))}
	for _, c := range catalog {
		v.categories[normalizeCategory(string(c))] = c
	}
	return v
}

// Lookup returns the catalog entry matching name, ignoring case and surrounding spaces.
func (v *CategoryValidator) Lookup(name Category) (Category, bool) {
	c, ok := v.categories[normalizeCategory(string(name))]
	return c, ok
}

// ValidateCategory returns an error when name is not in the catalog.
func (v *CategoryValidator) ValidateCategory(name Category) error {
	if _, ok := v.Lookup(name); !ok {
		return fmt.Errorf("invalid category: %q (normalized: %q)", name, normalizeCategory(string(name)))
	}
	return nil
}

// normalizeCategory uppercases and trims a category name for comparison.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Issue describes a transaction that passed the shape checks but looks suspicious.
type Issue struct {
	Index  int
	Reason string
}

// ReviewTransactions reports catalog and sign-convention anomalies. It never
// modifies or rejects the result; the model output is passed through as reported.
func (v *CategoryValidator) ReviewTransactions(txs []Transaction) []Issue {
	var issues []Issue
	for i, tx := range txs {
		if err := v.ValidateCategory(tx.Category); err != nil {
			issues = append(issues, Issue{Index: i, Reason: err.Error()})
		}
		switch tx.Kind {
		case KindExpense:
			if tx.Amount.IsPositive() {
				issues = append(issues, Issue{Index: i, Reason: "expense with positive amount " + tx.Amount.String()})
			}
		case KindIncome:
			if tx.Amount.IsNegative() {
				issues = append(issues, Issue{Index: i, Reason: "income with negative amount " + tx.Amount.String()})
			}
		default:
			issues = append(issues, Issue{Index: i, Reason: fmt.Sprintf("unknown kind %q", tx.Kind)})
		}
	}
	return issues
}

package statement

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// AccountCategory selects the extraction template and the sign convention.
type AccountCategory string

const (
	CreditCard   AccountCategory = "CREDIT_CARD"
	DebitAccount AccountCategory = "DEBIT_ACCOUNT"
)

// AccountCategories lists every supported account category.
var AccountCategories = []AccountCategory{CreditCard, DebitAccount}

// ParseAccountCategory normalizes s and checks it against the closed set of categories.
func ParseAccountCategory(s string) (AccountCategory, error) {
	normalized := AccountCategory(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range AccountCategories {
		if c == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown account category %q", s)
}

// Category is a spending/income bucket from the fixed catalog.
type Category string

const (
	CategoryFood          Category = "Alimentación"
	CategoryTransport     Category = "Transporte"
	CategoryHousing       Category = "Vivienda"
	CategoryEntertainment Category = "Entretenimiento"
	CategoryHealth        Category = "Salud"
	CategoryEducation     Category = "Educación"
	CategoryShopping      Category = "Compras"
	CategoryServices      Category = "Servicios"
	CategoryTransfers     Category = "Transferencias"
	CategoryOther         Category = "Otros"
)

// Catalog is the ordered category catalog offered to the model.
var Catalog = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryHousing,
	CategoryEntertainment,
	CategoryHealth,
	CategoryEducation,
	CategoryShopping,
	CategoryServices,
	CategoryTransfers,
	CategoryOther,
}

// Kind tells income from expense.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// UnmarshalText accepts the Spanish labels older prompts produced.
func (k *Kind) UnmarshalText(text []byte) error {
	switch v := strings.ToLower(strings.TrimSpace(string(text))); v {
	case "income", "ingreso":
		*k = KindIncome
	case "expense", "gasto":
		*k = KindExpense
	default:
		*k = Kind(v)
	}
	return nil
}

// Confidence is a 0-100 self-reported reliability score.
type Confidence int

// UnmarshalJSON accepts integers, floats (rounded) and numeric strings inside 0-100.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	f, err := parseLooseNumber(data)
	if err != nil {
		return fmt.Errorf("confidence: %w", err)
	}
	f = math.Round(f)
	if f < 0 || f > 100 {
		return fmt.Errorf("confidence: %s outside 0-100", strings.TrimSpace(string(data)))
	}
	*c = Confidence(f)
	return nil
}

// Count is a non-negative integer the model may report as 2, 2.0 or "2".
type Count int

func (n *Count) UnmarshalJSON(data []byte) error {
	f, err := parseLooseNumber(data)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return fmt.Errorf("count: %s is not a non-negative integer", strings.TrimSpace(string(data)))
	}
	*n = Count(f)
	return nil
}

// parseLooseNumber reads a finite JSON number, a numeric string (optionally with
// a trailing %) or null, which reads as zero.
func parseLooseNumber(data []byte) (float64, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return 0, nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSuffix(strings.TrimSpace(unquoted), "%")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", string(data))
	}
	return f, nil
}

// Valid reports whether c is inside 0-100.
func (c Confidence) Valid() bool {
	return c >= 0 && c <= 100
}

// AccountTypeVerdict is the detector's classification of a statement.
type AccountTypeVerdict struct {
	AccountCategory AccountCategory `json:"accountCategory"`
	InstitutionName string          `json:"institutionName"`
	Confidence      Confidence      `json:"confidence"`
}

// Transaction is one statement line as reported by the model.
// Expenses carry negative amounts, income positive ones.
type Transaction struct {
	Date        civil.Date      `json:"date"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
}

// UnmarshalJSON reads the date with ParseStatementDate.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := struct {
		*alias
		Date *string `json:"date"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == nil {
		return nil
	}
	d, err := ParseStatementDate(*aux.Date)
	if err != nil {
		return fmt.Errorf("transaction date: %w", err)
	}
	t.Date = d
	return nil
}

// MarshalJSON writes the amount as a JSON number.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(struct {
		alias
		Amount json.Number `json:"amount"`
	}{alias: alias(t), Amount: amountNumber(t.Amount)})
}

// AnalysisSummary holds the model-reported totals. NetBalance is expected to be
// TotalIncome + TotalExpenses but is passed through as reported.
type AnalysisSummary struct {
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	NetBalance       decimal.Decimal `json:"netBalance"`
	TransactionCount Count           `json:"transactionCount"`
	Period           string          `json:"period"`
}

// MarshalJSON writes the totals as JSON numbers.
func (s AnalysisSummary) MarshalJSON() ([]byte, error) {
	type alias AnalysisSummary
	return json.Marshal(struct {
		alias
		TotalIncome   json.Number `json:"totalIncome"`
		TotalExpenses json.Number `json:"totalExpenses"`
		NetBalance    json.Number `json:"netBalance"`
	}{
		alias:         alias(s),
		TotalIncome:   amountNumber(s.TotalIncome),
		TotalExpenses: amountNumber(s.TotalExpenses),
		NetBalance:    amountNumber(s.NetBalance),
	})
}

// AnalysisResult is the unit returned to callers.
// Transactions and Summary are nil when the model omitted them.
type AnalysisResult struct {
	Confidence        Confidence                   `json:"confidence"`
	InstitutionName   string                       `json:"institutionName"`
	AccountCategory   AccountCategory              `json:"accountCategory"`
	Transactions      []Transaction                `json:"transactions"`
	Summary           *AnalysisSummary             `json:"summary"`
	CategoryBreakdown map[Category]decimal.Decimal `json:"categoryBreakdown"`
}

// MarshalJSON keeps an empty transaction list as [] instead of null.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type alias AnalysisResult
	out := alias(r)
	if out.Transactions == nil {
		out.Transactions = []Transaction{}
	}
	breakdown := make(map[Category]json.Number, len(r.CategoryBreakdown))
	for c, amount := range r.CategoryBreakdown {
		breakdown[c] = amountNumber(amount)
	}
	return json.Marshal(struct {
		alias
		CategoryBreakdown map[Category]json.Number `json:"categoryBreakdown"`
	}{alias: out, CategoryBreakdown: breakdown})
}

// amountNumber renders d as a JSON number, the shape the model was asked to produce.
func amountNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// Package categorizer maps transaction text to a spending category with a
// confidence score. Categorization is best-effort by contract: no strategy
// may return an error to the ledger; failures degrade to a low-confidence
// "Other" guess instead of blocking the money movement.
package categorizer

import (
	"context"

	"github.com/shopspring/decimal"
)

// The fixed label set shared by both strategies.
var Labels = []string{
	"Groceries",
	"Dining",
	"Transport",
	"Shopping",
	"Utilities",
	"Entertainment",
	"Health",
	"Travel",
	"Transfers",
	"Deposit",
	"Other",
}

// CategoryOther is the degraded default.
const CategoryOther = "Other"

// Input carries everything known about a transaction at categorization
// time. All text fields are optional.
type Input struct {
	Merchant    string
	Description string
	MCC         string
	Amount      decimal.Decimal
	Currency    string
	Country     string
}

// Result is a best-guess category with confidence in [0,1].
type Result struct {
	Category   string
	Confidence float64
	Rationale  string
}

// Categorizer is implemented by the rule matcher and the hosted
// classifier. The strategy is chosen once at construction from config,
// never per call.
type Categorizer interface {
	Categorize(ctx context.Context, input Input) Result
}

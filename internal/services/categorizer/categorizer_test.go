package categorizer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRuleCategorizer(t *testing.T) {
	c := NewRuleCategorizer()
	ctx := context.Background()

	tests := []struct {
		name     string
		input    Input
		category string
	}{
		{
			name:     "grocery keyword",
			input:    Input{Merchant: "Whole Foods Market", Amount: decimal.RequireFromString("54.20")},
			category: "Groceries",
		},
		{
			name:     "mcc beats text",
			input:    Input{Merchant: "Unknown Corner", MCC: "5812", Amount: decimal.RequireFromString("12.00")},
			category: "Dining",
		},
		{
			name:     "transport keyword in description",
			input:    Input{Description: "UBER *TRIP HELP.UBER.COM", Amount: decimal.RequireFromString("9.80")},
			category: "Transport",
		},
		{
			name:     "reload pattern",
			input:    Input{Description: "Wallet reload via Stripe", Amount: decimal.RequireFromString("100.00")},
			category: "Deposit",
		},
		{
			name:     "transfer pattern",
			input:    Input{Description: "p2p transfer to savings", Amount: decimal.RequireFromString("40.00")},
			category: "Transfers",
		},
		{
			name:     "unknown falls through to Other",
			input:    Input{Merchant: "zzzzz", Description: "???", Amount: decimal.RequireFromString("1.00")},
			category: CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Categorize(ctx, tt.input)
			assert.Equal(t, tt.category, result.Category)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
			assert.NotEmpty(t, result.Rationale)
		})
	}
}

func TestRuleCategorizerEmptyInput(t *testing.T) {
	c := NewRuleCategorizer()

	result := c.Categorize(context.Background(), Input{})
	assert.Equal(t, CategoryOther, result.Category)
	assert.Less(t, result.Confidence, 0.3)
}

func TestRuleConfidenceRange(t *testing.T) {
	for _, r := range defaultRules() {
		assert.GreaterOrEqual(t, r.confidence, 0.3, "rule for %s", r.category)
		assert.LessOrEqual(t, r.confidence, 0.85, "rule for %s", r.category)
	}
}

func TestHostedFallsBackOnError(t *testing.T) {
	// No API key and a cancelled context force the hosted path to fail;
	// the result must still be a valid rule-based guess.
	c := NewHostedCategorizer("gemini-2.0-flash", "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := c.Categorize(ctx, Input{Merchant: "Whole Foods Market"})
	assert.Equal(t, "Groceries", result.Category)
}

func TestCleanModelJSON(t *testing.T) {
	fenced := "```json\n{\"category\":\"Dining\",\"confidence\":0.9}\n```"
	assert.Equal(t, `{"category":"Dining","confidence":0.9}`, cleanModelJSON(fenced))

	plain := `{"category":"Other","confidence":0.2}`
	assert.Equal(t, plain, cleanModelJSON(plain))
}

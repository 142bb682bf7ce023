package categorizer

import (
	"context"
	"regexp"
	"strings"
)

// rule is one deterministic match. Rules are evaluated in order; the
// first hit wins. Confidence is fixed per rule.
type rule struct {
	category   string
	confidence float64
	keywords   []string
	pattern    *regexp.Regexp
	mccs       []string
}

// RuleCategorizer is the offline strategy: ordered keyword/regex matching
// over merchant, description, and MCC.
type RuleCategorizer struct {
	rules []rule
}

func NewRuleCategorizer() *RuleCategorizer {
	return &RuleCategorizer{rules: defaultRules()}
}

func defaultRules() []rule {
	return []rule{
		{category: "Groceries", confidence: 0.85, mccs: []string{"5411", "5422", "5451"},
			keywords: []string{"supermarket", "grocery", "market", "carrefour", "aldi", "lidl", "whole foods"}},
		{category: "Dining", confidence: 0.8, mccs: []string{"5812", "5813", "5814"},
			keywords: []string{"restaurant", "cafe", "coffee", "pizza", "burger", "bistro", "diner", "bar "}},
		{category: "Transport", confidence: 0.8, mccs: []string{"4111", "4121", "5541", "5542"},
			keywords: []string{"uber", "lyft", "taxi", "metro", "bus ", "train", "fuel", "petrol", "gas station", "parking"}},
		{category: "Utilities", confidence: 0.75, mccs: []string{"4900", "4814"},
			keywords: []string{"electric", "water bill", "internet", "telecom", "mobile top", "utility"}},
		{category: "Travel", confidence: 0.75, mccs: []string{"3000", "4511", "7011"},
			keywords: []string{"airline", "flight", "hotel", "airbnb", "booking.com", "hostel"}},
		{category: "Entertainment", confidence: 0.7, mccs: []string{"7832", "7922"},
			keywords: []string{"cinema", "netflix", "spotify", "concert", "theatre", "game"}},
		{category: "Health", confidence: 0.7, mccs: []string{"5912", "8011", "8062"},
			keywords: []string{"pharmacy", "clinic", "hospital", "dental", "doctor"}},
		{category: "Shopping", confidence: 0.6, mccs: []string{"5311", "5399", "5999"},
			keywords: []string{"amazon", "store", "shop", "mall", "boutique", "retail"}},
		{category: "Deposit", confidence: 0.6,
			pattern:  regexp.MustCompile(`(?i)\b(reload|top[- ]?up|deposit)\b`),
			keywords: []string{"wallet reload"}},
		{category: "Transfers", confidence: 0.3,
			pattern: regexp.MustCompile(`(?i)\b(transfer|p2p|send money)\b`)},
	}
}

func (c *RuleCategorizer) Categorize(_ context.Context, input Input) Result {
	haystack := strings.ToLower(input.Merchant + " " + input.Description)

	for _, r := range c.rules {
		for _, mcc := range r.mccs {
			if input.MCC != "" && input.MCC == mcc {
				return Result{Category: r.category, Confidence: r.confidence, Rationale: "mcc:" + mcc}
			}
		}
		for _, kw := range r.keywords {
			if strings.Contains(haystack, kw) {
				return Result{Category: r.category, Confidence: r.confidence, Rationale: "keyword:" + kw}
			}
		}
		if r.pattern != nil && r.pattern.MatchString(haystack) {
			return Result{Category: r.category, Confidence: r.confidence, Rationale: "pattern"}
		}
	}

	return Result{Category: CategoryOther, Confidence: 0.1, Rationale: "no rule matched"}
}

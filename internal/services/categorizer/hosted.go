package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"
)

// HostedCategorizer asks a hosted zero-shot classifier for the label.
// Any network or parse failure falls back to the rule matcher; the caller
// never sees an error.
type HostedCategorizer struct {
	model    string
	apiKey   string
	fallback *RuleCategorizer
}

func NewHostedCategorizer(model, apiKey string) *HostedCategorizer {
	return &HostedCategorizer{
		model:    model,
		apiKey:   apiKey,
		fallback: NewRuleCategorizer(),
	}
}

func (c *HostedCategorizer) Categorize(ctx context.Context, input Input) Result {
	result, err := c.classify(ctx, input)
	if err != nil {
		log.Printf("hosted categorizer fell back to rules: %v", err)
		return c.fallback.Categorize(ctx, input)
	}
	return result
}

func (c *HostedCategorizer) classify(ctx context.Context, input Input) (Result, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return Result{}, fmt.Errorf("create genai client: %w", err)
	}

	prompt := "Classify this payment into exactly one of these categories: " +
		strings.Join(Labels, ", ") + ".\n" +
		fmt.Sprintf("Merchant: %q\nDescription: %q\nMCC: %q\nAmount: %s %s\nCountry: %q\n",
			input.Merchant, input.Description, input.MCC,
			input.Amount.String(), input.Currency, input.Country) +
		"Return ONLY valid raw JSON of the form " +
		`{"category":"<label>","confidence":<0..1>,"rationale":"<short reason>"}` + ".\n" +
		"Do NOT wrap the response in code fences."

	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}

	resp, err := client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return Result{}, fmt.Errorf("generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return Result{}, fmt.Errorf("empty response from model")
	}

	var parsed struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
		Rationale  string  `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		return Result{}, fmt.Errorf("unmarshal model response: %w", err)
	}
	if !validLabel(parsed.Category) {
		return Result{}, fmt.Errorf("model returned unknown label %q", parsed.Category)
	}
	if parsed.Confidence < 0 || parsed.Confidence > 1 {
		return Result{}, fmt.Errorf("model confidence out of range: %v", parsed.Confidence)
	}

	return Result{
		Category:   parsed.Category,
		Confidence: parsed.Confidence,
		Rationale:  parsed.Rationale,
	}, nil
}

func validLabel(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// cleanModelJSON strips markdown fences models sometimes add despite the
// prompt instructions.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

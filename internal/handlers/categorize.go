package handlers

import (
	"kopa/internal/services/categorizer"
	"kopa/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CategorizeHandler struct {
	categorizer categorizer.Categorizer
}

func NewCategorizeHandler(cat categorizer.Categorizer) *CategorizeHandler {
	return &CategorizeHandler{categorizer: cat}
}

// Preview runs the active categorization strategy without recording
// anything, so clients can show a category before the payment happens.
func (h *CategorizeHandler) Preview(c *fiber.Ctx) error {
	var input struct {
		Merchant    string `json:"merchant"`
		Description string `json:"description"`
		MCC         string `json:"mcc"`
		Amount      string `json:"amount"`
		Currency    string `json:"currency"`
		Country     string `json:"country"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	amount := decimal.Zero
	if input.Amount != "" {
		parsed, err := decimal.NewFromString(input.Amount)
		if err != nil {
			return response.BadRequest(c, "Invalid amount")
		}
		amount = parsed
	}

	result := h.categorizer.Categorize(c.Context(), categorizer.Input{
		Merchant:    input.Merchant,
		Description: input.Description,
		MCC:         input.MCC,
		Amount:      amount,
		Currency:    input.Currency,
		Country:     input.Country,
	})
	return response.Success(c, "OK", result)
}

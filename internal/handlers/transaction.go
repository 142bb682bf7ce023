package handlers

import (
	"errors"
	"time"

	"kopa/internal/models"
	"kopa/internal/repositories"
	"kopa/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	transactions repositories.TransactionRepository
	wallets      repositories.WalletRepository
}

func NewTransactionHandler(transactions repositories.TransactionRepository, wallets repositories.WalletRepository) *TransactionHandler {
	return &TransactionHandler{transactions: transactions, wallets: wallets}
}

// scopeToCallerWallet decides which wallet the caller may see history
// for. Admins pass through whatever they asked for; everyone else is
// forced onto their own wallet. On rejection the second return is false
// and the response has already been written.
func (h *TransactionHandler) scopeToCallerWallet(c *fiber.Ctx, requested uint) (uint, bool) {
	if isAdmin(c) {
		return requested, true
	}
	own, err := callerWallet(c, h.wallets)
	if err != nil {
		_ = response.Error(c, fiber.StatusForbidden, "No wallet for caller")
		return 0, false
	}
	if requested != 0 && requested != own.ID {
		_ = response.Error(c, fiber.StatusForbidden, "Wallet does not belong to caller")
		return 0, false
	}
	return own.ID, true
}

func transactionView(tx *models.Transaction) fiber.Map {
	return fiber.Map{
		"id":         tx.ID,
		"type":       tx.Type,
		"mode":       tx.Mode,
		"amount":     tx.Amount.StringFixed(2),
		"currency":   tx.Currency,
		"status":     tx.Status,
		"source_ref": tx.SourceRef,
		"item":       tx.Item,
		"detail":     tx.Detail,
		"category":   tx.EffectiveCategory(),
		"confidence": tx.CategoryConfidence,
		"created_at": tx.CreatedAt,
	}
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid transaction id")
	}

	tx, err := h.transactions.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidTransaction) {
			return response.Error(c, fiber.StatusNotFound, "Transaction not found")
		}
		return response.ServerError(c, "Failed to get transaction")
	}
	if !isAdmin(c) {
		own, err := callerWallet(c, h.wallets)
		if err != nil || !touchesWallet(tx, own.ID) {
			return response.Error(c, fiber.StatusNotFound, "Transaction not found")
		}
	}
	return response.Success(c, "OK", transactionView(tx))
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	walletID, ok := h.scopeToCallerWallet(c, uint(c.QueryInt("wallet_id")))
	if !ok {
		return nil
	}
	filter := repositories.TransactionFilter{
		WalletID: walletID,
		Status:   c.Query("status"),
		Type:     c.Query("type"),
		Limit:    c.QueryInt("limit", 50),
		Offset:   c.QueryInt("offset"),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return response.BadRequest(c, "Invalid from timestamp")
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return response.BadRequest(c, "Invalid to timestamp")
		}
		filter.To = t
	}

	txs, err := h.transactions.Scan(c.Context(), filter)
	if err != nil {
		return response.ServerError(c, "Failed to list transactions")
	}

	views := make([]fiber.Map, 0, len(txs))
	for i := range txs {
		views = append(views, transactionView(&txs[i]))
	}
	return response.Success(c, "OK", fiber.Map{"transactions": views})
}

// OverrideCategory is the only post-insert mutation a transaction allows.
func (h *TransactionHandler) OverrideCategory(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid transaction id")
	}

	var input struct {
		Category string `json:"category"`
	}
	if err := c.BodyParser(&input); err != nil || input.Category == "" {
		return response.BadRequest(c, "Category is required")
	}

	if !isAdmin(c) {
		tx, err := h.transactions.GetByID(c.Context(), uint(id))
		if err != nil {
			if errors.Is(err, repositories.ErrInvalidTransaction) {
				return response.Error(c, fiber.StatusNotFound, "Transaction not found")
			}
			return response.ServerError(c, "Failed to override category")
		}
		own, err := callerWallet(c, h.wallets)
		if err != nil || !touchesWallet(tx, own.ID) {
			return response.Error(c, fiber.StatusNotFound, "Transaction not found")
		}
	}

	if err := h.transactions.OverrideCategory(c.Context(), uint(id), input.Category); err != nil {
		if errors.Is(err, repositories.ErrInvalidTransaction) {
			return response.Error(c, fiber.StatusNotFound, "Transaction not found")
		}
		return response.ServerError(c, "Failed to override category")
	}
	return response.Success(c, "Category updated", fiber.Map{"id": id, "category": input.Category})
}

package handlers

import (
	"kopa/internal/repositories"
	"kopa/internal/services/ledger"
	"kopa/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type LedgerHandler struct {
	ledgerService ledger.Service
	wallets       repositories.WalletRepository
}

func NewLedgerHandler(ledgerService ledger.Service, wallets repositories.WalletRepository) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, wallets: wallets}
}

// pinToCallerWallet pins a client-supplied wallet id to the caller's own
// wallet: a zero id defaults to it, a mismatching id is rejected. Admins
// may act on any wallet. On rejection the second return is false and the
// response has already been written.
func (h *LedgerHandler) pinToCallerWallet(c *fiber.Ctx, requested uint) (uint, bool) {
	if isAdmin(c) && requested != 0 {
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

// parseAmount accepts decimal-string amounts; floats are rejected at the
// API edge so money never rides a float64.
func parseAmount(raw string) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Zero, true
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

func (h *LedgerHandler) Reload(c *fiber.Ctx) error {
	var input struct {
		WalletID         uint   `json:"wallet_id"`
		Amount           string `json:"amount"`
		Provider         string `json:"provider"`
		ExternalSourceID string `json:"external_source_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	amount, ok := parseAmount(input.Amount)
	if !ok {
		return response.BadRequest(c, "Invalid amount")
	}
	walletID, ok := h.pinToCallerWallet(c, input.WalletID)
	if !ok {
		return nil
	}

	tx, err := h.ledgerService.Reload(c.Context(), ledger.ReloadRequest{
		WalletID:         walletID,
		Amount:           amount,
		Provider:         input.Provider,
		ExternalSourceID: input.ExternalSourceID,
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Reload successful", transactionView(tx))
}

func (h *LedgerHandler) Pay(c *fiber.Ctx) error {
	var input struct {
		FromWalletID     uint   `json:"from_wallet_id"`
		ToWalletID       uint   `json:"to_wallet_id"`
		Amount           string `json:"amount"`
		Mode             string `json:"mode"`
		QRPayload        string `json:"qr_payload"`
		Item             string `json:"item"`
		Memo             string `json:"memo"`
		CategoryOverride string `json:"category_override"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	amount, ok := parseAmount(input.Amount)
	if !ok {
		return response.BadRequest(c, "Invalid amount")
	}

	fromWalletID, ok := h.pinToCallerWallet(c, input.FromWalletID)
	if !ok {
		return nil
	}

	tx, err := h.ledgerService.Pay(c.Context(), ledger.PayRequest{
		FromWalletID:     fromWalletID,
		ToWalletID:       input.ToWalletID,
		Amount:           amount,
		Mode:             input.Mode,
		QRPayload:        input.QRPayload,
		Item:             input.Item,
		Memo:             input.Memo,
		CategoryOverride: input.CategoryOverride,
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Payment successful", transactionView(tx))
}

func (h *LedgerHandler) Transfer(c *fiber.Ctx) error {
	var input struct {
		FromWalletID     uint   `json:"from_wallet_id"`
		ToWalletID       uint   `json:"to_wallet_id"`
		Amount           string `json:"amount"`
		Memo             string `json:"memo"`
		CategoryOverride string `json:"category_override"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	amount, ok := parseAmount(input.Amount)
	if !ok {
		return response.BadRequest(c, "Invalid amount")
	}

	fromWalletID, ok := h.pinToCallerWallet(c, input.FromWalletID)
	if !ok {
		return nil
	}

	tx, err := h.ledgerService.Transfer(c.Context(), ledger.TransferRequest{
		FromWalletID:     fromWalletID,
		ToWalletID:       input.ToWalletID,
		Amount:           amount,
		Memo:             input.Memo,
		CategoryOverride: input.CategoryOverride,
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Transfer successful", transactionView(tx))
}

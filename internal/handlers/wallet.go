package handlers

import (
	"kopa/internal/middleware"
	"kopa/internal/repositories"
	"kopa/internal/services/ledger"
	"kopa/internal/services/lookup"
	"kopa/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	ledgerService ledger.Service
	lookupService lookup.Service
	wallets       repositories.WalletRepository
}

func NewWalletHandler(ledgerService ledger.Service, lookupService lookup.Service, wallets repositories.WalletRepository) *WalletHandler {
	return &WalletHandler{
		ledgerService: ledgerService,
		lookupService: lookupService,
		wallets:       wallets,
	}
}

// GetWallet returns a wallet with its balance. Balances are private:
// non-admin callers only ever see their own wallet.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	walletID, err := c.ParamsInt("id")
	if err != nil || walletID <= 0 {
		return response.BadRequest(c, "Invalid wallet id")
	}

	if !isAdmin(c) {
		own, err := callerWallet(c, h.wallets)
		if err != nil {
			return response.Error(c, fiber.StatusForbidden, "No wallet for caller")
		}
		if own.ID != uint(walletID) {
			return response.Error(c, fiber.StatusForbidden, "Wallet does not belong to caller")
		}
	}

	wallet, err := h.ledgerService.GetWallet(c.Context(), uint(walletID))
	if err != nil {
		return response.DomainError(c, err)
	}

	return response.Success(c, "OK", fiber.Map{
		"id":            wallet.ID,
		"wallet_number": wallet.WalletNumber,
		"balance":       wallet.Balance.StringFixed(2),
		"currency":      wallet.Currency,
		"status":        wallet.Status,
	})
}

// Lookup resolves a payee by any supported identifier. Balance is never
// part of the result.
func (h *WalletHandler) Lookup(c *fiber.Ctx) error {
	if middleware.Claims(c) == nil {
		return response.Unauthorized(c)
	}

	result, err := h.lookupService.Resolve(c.Context(), lookup.Query{
		WalletNumber: c.Query("wallet_number"),
		Phone:        c.Query("phone"),
		Email:        c.Query("email"),
		Username:     c.Query("username"),
		MerchantName: c.Query("merchant"),
	})
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "OK", result)
}

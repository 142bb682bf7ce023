package handlers

import (
	"kopa/internal/middleware"
	"kopa/internal/models"
	"kopa/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

// callerWallet resolves the authenticated caller's own wallet from their
// claims. Wallet ids supplied by the client are never trusted; handlers
// check them against this.
func callerWallet(c *fiber.Ctx, wallets repositories.WalletRepository) (*models.Wallet, error) {
	claims := middleware.Claims(c)
	if claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return wallets.GetByUserID(c.Context(), claims.UserID)
}

func isAdmin(c *fiber.Ctx) bool {
	claims := middleware.Claims(c)
	return claims != nil && claims.Role == models.RoleAdmin
}

// touchesWallet reports whether the transaction involves the wallet as
// source or destination.
func touchesWallet(tx *models.Transaction, walletID uint) bool {
	if tx.SourceWalletID != nil && *tx.SourceWalletID == walletID {
		return true
	}
	return tx.DestWalletID != nil && *tx.DestWalletID == walletID
}

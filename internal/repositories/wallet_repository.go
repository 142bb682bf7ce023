package repositories

import (
	"context"
	"errors"

	"kopa/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrDuplicateWallet    = errors.New("wallet already exists")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// WalletRepository defines the interface for wallet persistence. The
// ForUpdate variants must acquire a row-level lock so that a concurrent
// operation on the same wallet cannot observe a stale balance between
// check and mutation; they are only valid inside ExecuteInTransaction.
type WalletRepository interface {
	Create(wallet *models.Wallet) error
	GetByID(ctx context.Context, id uint) (*models.Wallet, error)
	GetByNumber(ctx context.Context, number string) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	GetByMerchantID(ctx context.Context, merchantID uint) (*models.Wallet, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Wallet, error)
	UpdateBalance(ctx context.Context, wallet *models.Wallet, balance decimal.Decimal) error

	// CreateTransaction inserts the movement record; the ledger calls it
	// inside the same unit as the balance mutations it describes.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// ExecuteInTransaction runs fn inside one all-or-nothing database
	// transaction; the repository passed to fn is scoped to it.
	ExecuteInTransaction(fn func(tx WalletRepository) error) error
}

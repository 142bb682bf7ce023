package ledger

import (
	"context"

	"kopa/internal/models"
	"kopa/internal/services/gateway"

	"github.com/shopspring/decimal"
)

// Service is the wallet ledger engine. It is the only component allowed
// to mutate wallet balances; each operation commits its mutations and the
// matching transaction record as one all-or-nothing local unit.
type Service interface {
	Reload(ctx context.Context, req ReloadRequest) (*models.Transaction, error)
	Pay(ctx context.Context, req PayRequest) (*models.Transaction, error)
	Transfer(ctx context.Context, req TransferRequest) (*models.Transaction, error)

	// SyncOwnerBalanceSnapshot copies the wallet's balance onto the
	// owner's cached field. Advisory: ledger operations invoke it
	// fire-and-forget and never fail because of it.
	SyncOwnerBalanceSnapshot(ctx context.Context, walletID uint) error

	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
}

// ProviderCharger is the slice of the gateway registry the ledger needs.
type ProviderCharger interface {
	Charge(ctx context.Context, providerName string, req gateway.ChargeRequest) (*models.Provider, gateway.ChargeResult, error)
}

// SnapshotStore updates the advisory owner balance snapshots.
type SnapshotStore interface {
	UpdateUserBalanceSnapshot(ctx context.Context, userID uint, balance decimal.Decimal) error
	UpdateMerchantBalanceSnapshot(ctx context.Context, merchantID uint, balance decimal.Decimal) error
}

// WalletCache is the advisory read cache in front of wallet rows.
type WalletCache interface {
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallets(ctx context.Context, walletIDs ...uint) error
}

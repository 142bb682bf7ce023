package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet statuses
const (
	WalletStatusActive = "active"
	WalletStatusLocked = "locked"
)

// Wallet is an internal balance-holding account owned by exactly one user
// or one merchant. The balance is only ever mutated by the ledger engine
// inside a locked database transaction; wallets are never physically
// deleted.
type Wallet struct {
	ID           uint            `gorm:"primarykey"`
	UserID       *uint           `gorm:"uniqueIndex"`
	MerchantID   *uint           `gorm:"uniqueIndex"`
	WalletNumber string          `gorm:"uniqueIndex;not null"`
	Balance      decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	Currency     string          `gorm:"default:'USD'"`
	Status       string          `gorm:"default:'active'"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Touch refreshes the last-update timestamp. The ledger calls this
// explicitly before persisting a balance mutation.
func (w *Wallet) Touch() {
	w.UpdatedAt = time.Now().UTC()
}

// HasSingleOwner reports whether exactly one of user/merchant owns the
// wallet.
func (w *Wallet) HasSingleOwner() bool {
	return (w.UserID == nil) != (w.MerchantID == nil)
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Balance always starts at zero; funds arrive through the ledger.
	w.Balance = decimal.Zero
	if !w.HasSingleOwner() {
		return gorm.ErrInvalidData
	}
	return nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionTypeReload   = "reload"
	TransactionTypePay      = "pay"
	TransactionTypeTransfer = "transfer"
)

// Transaction statuses
const (
	TransactionStatusPending = "pending"
	TransactionStatusSuccess = "success"
	TransactionStatusFailed  = "failed"
)

// Payment modes for pay transactions
const (
	PayModeStandard = "standard"
	PayModeNFC      = "nfc"
	PayModeQR       = "qr"
)

// Transaction is one recorded money movement. Rows are append-only: once
// status is success, only FinalCategory may change (human override).
// SourceWalletID/DestWalletID resolve internal parties; SourceRef carries
// the external provider charge reference for reloads, or a descriptive
// string when no internal entity exists.
type Transaction struct {
	ID                 uint            `gorm:"primarykey"`
	Type               string          `gorm:"not null;index"`
	Amount             decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Currency           string          `gorm:"default:'USD'"`
	SourceWalletID     *uint           `gorm:"index"`
	DestWalletID       *uint           `gorm:"index"`
	SourceRef          string
	ProviderID         *uint
	Status             string `gorm:"not null;default:'pending';index"`
	Mode               string
	Item               string
	Detail             string
	Category           string  `gorm:"index"`
	CategoryConfidence float64 `gorm:"default:0"`
	FinalCategory      string
	Metadata           JSON      `gorm:"type:jsonb"`
	CreatedAt          time.Time `gorm:"index"`
	UpdatedAt          time.Time
}

// Touch refreshes the last-update timestamp, set explicitly by the owner
// of the mutation (category override is the only permitted one).
func (t *Transaction) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// EffectiveCategory returns the human override when present, otherwise
// the predicted category.
func (t *Transaction) EffectiveCategory() string {
	if t.FinalCategory != "" {
		return t.FinalCategory
	}
	return t.Category
}

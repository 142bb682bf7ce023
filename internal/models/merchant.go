package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Merchant owns at most one wallet, like User. BusinessName is the lookup
// key used by the wallet resolution collaborator.
type Merchant struct {
	ID            uint   `gorm:"primarykey"`
	BusinessName  string `gorm:"uniqueIndex;not null"`
	BusinessType  string
	Email         string `gorm:"uniqueIndex"`
	CachedBalance decimal.Decimal `gorm:"type:numeric(20,2);default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User roles
const (
	RoleUser       = "user"
	RoleMerchant   = "merchant"
	RoleAdmin      = "admin"
	RoleThirdParty = "thirdparty"
)

// User owns at most one wallet. CachedBalance is an advisory denormalized
// snapshot refreshed best-effort after ledger commits; the wallet row is
// authoritative.
type User struct {
	ID            uint   `gorm:"primarykey"`
	Email         string `gorm:"uniqueIndex;not null"`
	Phone         string `gorm:"uniqueIndex"`
	Username      string `gorm:"uniqueIndex"`
	Password      string `gorm:"not null" json:"-"`
	Role          string `gorm:"default:'user'"`
	CachedBalance decimal.Decimal `gorm:"type:numeric(20,2);default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

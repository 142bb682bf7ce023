package models

import "time"

// Well-known provider names
const (
	ProviderStripe   = "Stripe"
	ProviderMockBank = "MockBank"
)

// Provider is an external payment rail. Rows are managed by an admin
// collaborator and read-only from the ledger's perspective. Credentials
// holds sealed material; decryption happens per charge and the plaintext
// never outlives the call.
type Provider struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"uniqueIndex;not null"`
	Enabled     bool   `gorm:"default:true"`
	Credentials []byte `gorm:"type:bytea"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

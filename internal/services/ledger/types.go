package ledger

import (
	"github.com/shopspring/decimal"
)

// ReloadRequest moves money from an external provider into a wallet.
type ReloadRequest struct {
	WalletID         uint
	Amount           decimal.Decimal
	Provider         string
	ExternalSourceID string
}

// PayRequest moves money between two wallets. In qr mode the destination
// and possibly the amount come from the QR payload; an explicit
// caller-supplied amount always wins over the QR-declared one.
type PayRequest struct {
	FromWalletID     uint
	ToWalletID       uint
	Amount           decimal.Decimal
	Mode             string
	QRPayload        string
	Item             string
	Memo             string
	CategoryOverride string
}

// TransferRequest is a peer transfer without QR/NFC framing.
type TransferRequest struct {
	FromWalletID     uint
	ToWalletID       uint
	Amount           decimal.Decimal
	Memo             string
	CategoryOverride string
}

// Config holds construction-time ledger settings.
type Config struct {
	DefaultCurrency string
}

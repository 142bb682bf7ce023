package ledger

import (
	"encoding/base64"
	"encoding/json"
	"time"

	kerrors "kopa/internal/errors"

	"github.com/shopspring/decimal"
)

// QRPayload is the decoded content of a payment QR code: a destination
// wallet, an optional declared amount, and an optional expiry.
type QRPayload struct {
	WalletNumber string `json:"wallet_no"`
	Amount       string `json:"amount,omitempty"`
	Exp          int64  `json:"exp,omitempty"`
}

// ParseQRPayload decodes and validates a base64url(JSON) QR payload.
// Expiry is checked against now before any wallet resolution happens.
func ParseQRPayload(raw string, now time.Time) (*QRPayload, error) {
	if raw == "" {
		return nil, kerrors.ErrInvalidQRPayload
	}
	data, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil, kerrors.ErrInvalidQRPayload
	}

	var payload QRPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, kerrors.ErrInvalidQRPayload
	}
	if payload.WalletNumber == "" {
		return nil, kerrors.ErrInvalidQRPayload
	}
	if payload.Amount != "" {
		if _, err := decimal.NewFromString(payload.Amount); err != nil {
			return nil, kerrors.ErrInvalidQRPayload
		}
	}
	if payload.Exp != 0 && now.After(time.Unix(payload.Exp, 0)) {
		return nil, kerrors.ErrQRExpired
	}
	return &payload, nil
}

// DeclaredAmount returns the QR-declared amount if one exists.
func (p *QRPayload) DeclaredAmount() (decimal.Decimal, bool) {
	if p.Amount == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

// EncodeQRPayload produces the wire form consumed by ParseQRPayload.
func EncodeQRPayload(p QRPayload) string {
	data, _ := json.Marshal(p)
	return base64.URLEncoding.EncodeToString(data)
}

// Package lookup resolves human-friendly identifiers to payable wallets.
// It exposes only what a payer needs to address a payment; balances never
// leave this package.
package lookup

import (
	"context"
	"errors"
	"log"

	kerrors "kopa/internal/errors"
	"kopa/internal/models"
	"kopa/internal/repositories"
)

// Query carries one or more identifiers; the first one that resolves
// wins, in field order.
type Query struct {
	WalletNumber string
	Phone        string
	Email        string
	Username     string
	MerchantName string
}

// Result is the payer-facing view of a resolved wallet.
type Result struct {
	WalletID     uint   `json:"wallet_id"`
	WalletNumber string `json:"wallet_number"`
	DisplayName  string `json:"display_name"`
	Currency     string `json:"currency"`
}

type Service interface {
	Resolve(ctx context.Context, q Query) (*Result, error)
}

type service struct {
	wallets repositories.WalletRepository
	owners  repositories.OwnerRepository
}

func NewService(wallets repositories.WalletRepository, owners repositories.OwnerRepository) Service {
	if wallets == nil {
		panic("wallet repository is required")
	}
	if owners == nil {
		panic("owner repository is required")
	}
	return &service{wallets: wallets, owners: owners}
}

func (s *service) Resolve(ctx context.Context, q Query) (*Result, error) {
	if q.WalletNumber != "" {
		wallet, err := s.wallets.GetByNumber(ctx, q.WalletNumber)
		if err != nil {
			return nil, mapLookupErr(err)
		}
		return s.describe(ctx, wallet), nil
	}

	if q.MerchantName != "" {
		merchant, err := s.owners.GetMerchantByName(ctx, q.MerchantName)
		if err != nil {
			return nil, mapLookupErr(err)
		}
		wallet, err := s.wallets.GetByMerchantID(ctx, merchant.ID)
		if err != nil {
			return nil, mapLookupErr(err)
		}
		return &Result{
			WalletID:     wallet.ID,
			WalletNumber: wallet.WalletNumber,
			DisplayName:  merchant.BusinessName,
			Currency:     wallet.Currency,
		}, nil
	}

	if q.Phone == "" && q.Email == "" && q.Username == "" {
		return nil, kerrors.ErrWalletNotFound.WithMessage("no lookup identifier supplied")
	}

	user, err := s.owners.FindUser(ctx, q.Phone, q.Email, q.Username)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	wallet, err := s.wallets.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, mapLookupErr(err)
	}

	name := user.Username
	if name == "" {
		name = user.Email
	}
	return &Result{
		WalletID:     wallet.ID,
		WalletNumber: wallet.WalletNumber,
		DisplayName:  name,
		Currency:     wallet.Currency,
	}, nil
}

func (s *service) describe(ctx context.Context, wallet *models.Wallet) *Result {
	result := &Result{
		WalletID:     wallet.ID,
		WalletNumber: wallet.WalletNumber,
		Currency:     wallet.Currency,
	}
	switch {
	case wallet.UserID != nil:
		if user, err := s.owners.GetUserByID(ctx, *wallet.UserID); err == nil {
			result.DisplayName = user.Username
			if result.DisplayName == "" {
				result.DisplayName = user.Email
			}
		}
	case wallet.MerchantID != nil:
		// Merchant wallets resolved by number keep the number as the
		// display name; the merchant path above fills it properly.
		result.DisplayName = wallet.WalletNumber
	}
	return result
}

func mapLookupErr(err error) error {
	if errors.Is(err, repositories.ErrWalletNotFound) || errors.Is(err, repositories.ErrOwnerNotFound) {
		return kerrors.ErrWalletNotFound
	}
	log.Printf("lookup persistence error: %v", err)
	return kerrors.ErrPersistence
}

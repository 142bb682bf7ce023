// Package ledger implements the wallet ledger engine: atomic,
// balance-consistent money movement between wallets and external payment
// providers.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	kerrors "kopa/internal/errors"
	"kopa/internal/events"
	"kopa/internal/models"
	"kopa/internal/repositories"
	"kopa/internal/services/categorizer"
	"kopa/internal/services/gateway"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	wallets     repositories.WalletRepository
	snapshots   SnapshotStore
	charger     ProviderCharger
	categorizer categorizer.Categorizer
	cache       WalletCache
	publisher   events.Publisher
	config      Config
}

// NewService creates the ledger engine. Cache and publisher are advisory
// and may be nil; everything else is required.
func NewService(
	wallets repositories.WalletRepository,
	snapshots SnapshotStore,
	charger ProviderCharger,
	cat categorizer.Categorizer,
	cache WalletCache,
	publisher events.Publisher,
	config Config,
) Service {
	if wallets == nil {
		panic("wallet repository is required")
	}
	if snapshots == nil {
		panic("snapshot store is required")
	}
	if charger == nil {
		panic("provider charger is required")
	}
	if cat == nil {
		panic("categorizer is required")
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = "USD"
	}
	return &service{
		wallets:     wallets,
		snapshots:   snapshots,
		charger:     charger,
		categorizer: cat,
		cache:       cache,
		publisher:   publisher,
		config:      config,
	}
}

// Reload charges the external provider first, then credits the wallet and
// records the transaction in one local atomic unit. The two steps are not
// atomic across the network boundary: a successful charge followed by a
// local failure leaves an orphaned charge, which is logged with the
// provider reference for reconciliation.
func (s *service) Reload(ctx context.Context, req ReloadRequest) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, kerrors.ErrInvalidAmount
	}

	wallet, err := s.wallets.GetByID(ctx, req.WalletID)
	if err != nil {
		return nil, mapWalletErr(err)
	}

	reference := uuid.NewString()
	provider, result, err := s.charger.Charge(ctx, req.Provider, gateway.ChargeRequest{
		ExternalSourceID: req.ExternalSourceID,
		Amount:           req.Amount,
		Currency:         wallet.Currency,
		WalletID:         wallet.ID,
		Reference:        reference,
	})
	if err != nil {
		var domainErr *kerrors.DomainError
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, kerrors.ErrProviderCharge.WithMessage("provider call failed: %v", err)
	}
	if !result.Success {
		// The provider's reason travels back verbatim.
		return nil, kerrors.ErrProviderCharge.WithMessage("%s", result.ErrorMessage)
	}

	predicted := s.categorizer.Categorize(ctx, categorizer.Input{
		Merchant:    provider.Name,
		Description: "Wallet reload via " + provider.Name,
		Amount:      req.Amount,
		Currency:    wallet.Currency,
	})

	var record *models.Transaction
	err = s.wallets.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		locked, err := tx.GetByIDForUpdate(ctx, req.WalletID)
		if err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, locked, locked.Balance.Add(req.Amount)); err != nil {
			return err
		}

		record = &models.Transaction{
			Type:               models.TransactionTypeReload,
			Amount:             req.Amount,
			Currency:           locked.Currency,
			DestWalletID:       &locked.ID,
			SourceRef:          result.ProviderRef,
			ProviderID:         &provider.ID,
			Status:             models.TransactionStatusSuccess,
			Detail:             "Wallet reload via " + provider.Name,
			Category:           predicted.Category,
			CategoryConfidence: predicted.Confidence,
		}
		return tx.CreateTransaction(ctx, record)
	})
	if err != nil {
		// The external charge already succeeded; flag the gap so a
		// reconciliation sweep can find it.
		log.Printf("orphaned charge: provider=%s ref=%s wallet=%d amount=%s: %v",
			provider.Name, result.ProviderRef, req.WalletID, req.Amount, err)
		return nil, mapWalletErr(err)
	}

	s.afterCommit(ctx, record, req.WalletID)
	return record, nil
}

// Pay moves money between two wallets. QR mode resolves the destination
// (and possibly the amount) from the payload before the invariant checks.
func (s *service) Pay(ctx context.Context, req PayRequest) (*models.Transaction, error) {
	mode := req.Mode
	if mode == "" {
		mode = models.PayModeStandard
	}

	toWalletID := req.ToWalletID
	amount := req.Amount
	detail := req.Memo

	if mode == models.PayModeQR {
		payload, err := ParseQRPayload(req.QRPayload, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		dest, err := s.wallets.GetByNumber(ctx, payload.WalletNumber)
		if err != nil {
			return nil, mapWalletErr(err)
		}
		toWalletID = dest.ID
		if declared, ok := payload.DeclaredAmount(); ok {
			// Explicit caller-supplied amount wins over the QR-declared
			// one; the declared value stays in the detail for audit.
			if amount.IsZero() {
				amount = declared
			} else if !amount.Equal(declared) {
				note := fmt.Sprintf("qr declared %s", declared.String())
				if detail == "" {
					detail = note
				} else {
					detail = detail + " (" + note + ")"
				}
			}
		}
	}

	return s.move(ctx, moveParams{
		txType:           models.TransactionTypePay,
		mode:             mode,
		fromWalletID:     req.FromWalletID,
		toWalletID:       toWalletID,
		amount:           amount,
		item:             req.Item,
		detail:           detail,
		categoryOverride: req.CategoryOverride,
	})
}

// Transfer is the same debit/credit/insert pattern as Pay without the
// QR/NFC framing.
func (s *service) Transfer(ctx context.Context, req TransferRequest) (*models.Transaction, error) {
	return s.move(ctx, moveParams{
		txType:           models.TransactionTypeTransfer,
		fromWalletID:     req.FromWalletID,
		toWalletID:       req.ToWalletID,
		amount:           req.Amount,
		detail:           req.Memo,
		categoryOverride: req.CategoryOverride,
	})
}

type moveParams struct {
	txType           string
	mode             string
	fromWalletID     uint
	toWalletID       uint
	amount           decimal.Decimal
	item             string
	detail           string
	categoryOverride string
}

func (s *service) move(ctx context.Context, p moveParams) (*models.Transaction, error) {
	if !p.amount.IsPositive() {
		return nil, kerrors.ErrInvalidAmount
	}
	if p.fromWalletID == p.toWalletID {
		return nil, kerrors.ErrSelfPayment
	}

	predicted := s.categorizer.Categorize(ctx, categorizer.Input{
		Description: p.item + " " + p.detail,
		Amount:      p.amount,
		Currency:    s.config.DefaultCurrency,
	})

	var record *models.Transaction
	err := s.wallets.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		from, to, err := lockPair(ctx, tx, p.fromWalletID, p.toWalletID)
		if err != nil {
			return err
		}
		if from.Balance.LessThan(p.amount) {
			return kerrors.ErrInsufficientBalance
		}

		if err := tx.UpdateBalance(ctx, from, from.Balance.Sub(p.amount)); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, to, to.Balance.Add(p.amount)); err != nil {
			return err
		}

		record = &models.Transaction{
			Type:               p.txType,
			Mode:               p.mode,
			Amount:             p.amount,
			Currency:           from.Currency,
			SourceWalletID:     &from.ID,
			DestWalletID:       &to.ID,
			Status:             models.TransactionStatusSuccess,
			Item:               p.item,
			Detail:             p.detail,
			Category:           predicted.Category,
			CategoryConfidence: predicted.Confidence,
			FinalCategory:      p.categoryOverride,
		}
		return tx.CreateTransaction(ctx, record)
	})
	if err != nil {
		return nil, mapWalletErr(err)
	}

	s.afterCommit(ctx, record, p.fromWalletID, p.toWalletID)
	return record, nil
}

// lockPair acquires both wallet rows under FOR UPDATE in ascending id
// order so concurrent pairs cannot deadlock.
func lockPair(ctx context.Context, tx repositories.WalletRepository, fromID, toID uint) (from, to *models.Wallet, err error) {
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}

	a, err := tx.GetByIDForUpdate(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := tx.GetByIDForUpdate(ctx, second)
	if err != nil {
		return nil, nil, err
	}

	if a.ID == fromID {
		return a, b, nil
	}
	return b, a, nil
}

// SyncOwnerBalanceSnapshot copies the wallet balance onto the owner's
// cached field. The snapshot is advisory; callers on the money path
// swallow the error.
func (s *service) SyncOwnerBalanceSnapshot(ctx context.Context, walletID uint) error {
	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return mapWalletErr(err)
	}
	switch {
	case wallet.UserID != nil:
		return s.snapshots.UpdateUserBalanceSnapshot(ctx, *wallet.UserID, wallet.Balance)
	case wallet.MerchantID != nil:
		return s.snapshots.UpdateMerchantBalanceSnapshot(ctx, *wallet.MerchantID, wallet.Balance)
	}
	return nil
}

// GetWallet serves reads through the advisory cache.
func (s *service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, err := s.cache.GetWallet(ctx, walletID); err == nil {
			return wallet, nil
		}
	}

	wallet, err := s.wallets.GetByID(ctx, walletID)
	if err != nil {
		return nil, mapWalletErr(err)
	}

	if s.cache != nil {
		if err := s.cache.SetWallet(ctx, wallet); err != nil {
			log.Printf("failed to cache wallet %d: %v", walletID, err)
		}
	}
	return wallet, nil
}

// afterCommit runs the advisory follow-ups of a committed movement:
// cache invalidation, owner snapshot sync, and event publishing. None of
// them may fail the operation.
func (s *service) afterCommit(ctx context.Context, record *models.Transaction, walletIDs ...uint) {
	if s.cache != nil {
		if err := s.cache.InvalidateWallets(ctx, walletIDs...); err != nil {
			log.Printf("failed to invalidate wallet cache: %v", err)
		}
	}
	for _, id := range walletIDs {
		if err := s.SyncOwnerBalanceSnapshot(ctx, id); err != nil {
			log.Printf("failed to sync owner balance snapshot for wallet %d: %v", id, err)
		}
	}
	if err := s.publisher.PublishTransaction(ctx, events.NewTransactionEvent(record)); err != nil {
		log.Printf("failed to publish transaction event %d: %v", record.ID, err)
	}
}

// mapWalletErr normalizes repository errors into the domain taxonomy.
// Domain errors pass through untouched; anything else becomes a generic
// persistence failure that is safe to retry.
func mapWalletErr(err error) error {
	var domainErr *kerrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, repositories.ErrWalletNotFound) {
		return kerrors.ErrWalletNotFound
	}
	log.Printf("ledger persistence error: %v", err)
	return kerrors.ErrPersistence
}

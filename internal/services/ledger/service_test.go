package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	kerrors "kopa/internal/errors"
	"kopa/internal/events"
	"kopa/internal/models"
	"kopa/internal/repositories"
	"kopa/internal/services/categorizer"
	"kopa/internal/services/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWalletRepo is an in-memory WalletRepository. ExecuteInTransaction
// holds one mutex for the whole closure and rolls back on error, which
// gives the same serialization the row locks give against Postgres.
type fakeWalletRepo struct {
	mu           sync.Mutex
	wallets      map[uint]models.Wallet
	transactions []models.Transaction
	nextTxID     uint
}

func newFakeWalletRepo(wallets ...*models.Wallet) *fakeWalletRepo {
	r := &fakeWalletRepo{wallets: make(map[uint]models.Wallet)}
	for _, w := range wallets {
		r.wallets[w.ID] = *w
	}
	return r
}

func (r *fakeWalletRepo) get(id uint) (*models.Wallet, error) {
	w, ok := r.wallets[id]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	cp := w
	return &cp, nil
}

func (r *fakeWalletRepo) getByNumber(number string) (*models.Wallet, error) {
	for _, w := range r.wallets {
		if w.WalletNumber == number {
			cp := w
			return &cp, nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (r *fakeWalletRepo) Create(wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[wallet.ID] = *wallet
	return nil
}

func (r *fakeWalletRepo) GetByID(_ context.Context, id uint) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r *fakeWalletRepo) GetByNumber(_ context.Context, number string) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getByNumber(number)
}

func (r *fakeWalletRepo) GetByUserID(_ context.Context, userID uint) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.UserID != nil && *w.UserID == userID {
			cp := w
			return &cp, nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (r *fakeWalletRepo) GetByMerchantID(_ context.Context, merchantID uint) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.MerchantID != nil && *w.MerchantID == merchantID {
			cp := w
			return &cp, nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (r *fakeWalletRepo) GetByIDForUpdate(_ context.Context, id uint) (*models.Wallet, error) {
	return r.get(id)
}

func (r *fakeWalletRepo) UpdateBalance(_ context.Context, wallet *models.Wallet, balance decimal.Decimal) error {
	w, ok := r.wallets[wallet.ID]
	if !ok {
		return repositories.ErrWalletNotFound
	}
	w.Balance = balance
	r.wallets[wallet.ID] = w
	return nil
}

func (r *fakeWalletRepo) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	r.nextTxID++
	tx.ID = r.nextTxID
	tx.CreatedAt = time.Now().UTC()
	r.transactions = append(r.transactions, *tx)
	return nil
}

func (r *fakeWalletRepo) ExecuteInTransaction(fn func(tx repositories.WalletRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[uint]models.Wallet, len(r.wallets))
	for id, w := range r.wallets {
		snapshot[id] = w
	}
	txCount := len(r.transactions)

	if err := fn(&fakeWalletTx{r: r}); err != nil {
		r.wallets = snapshot
		r.transactions = r.transactions[:txCount]
		return err
	}
	return nil
}

// fakeWalletTx is the transaction-scoped view; the parent holds the lock.
type fakeWalletTx struct {
	r *fakeWalletRepo
}

func (t *fakeWalletTx) Create(wallet *models.Wallet) error {
	t.r.wallets[wallet.ID] = *wallet
	return nil
}

func (t *fakeWalletTx) GetByID(_ context.Context, id uint) (*models.Wallet, error) {
	return t.r.get(id)
}

func (t *fakeWalletTx) GetByNumber(_ context.Context, number string) (*models.Wallet, error) {
	return t.r.getByNumber(number)
}

func (t *fakeWalletTx) GetByUserID(context.Context, uint) (*models.Wallet, error) {
	return nil, repositories.ErrWalletNotFound
}

func (t *fakeWalletTx) GetByMerchantID(context.Context, uint) (*models.Wallet, error) {
	return nil, repositories.ErrWalletNotFound
}

func (t *fakeWalletTx) GetByIDForUpdate(_ context.Context, id uint) (*models.Wallet, error) {
	return t.r.get(id)
}

func (t *fakeWalletTx) UpdateBalance(ctx context.Context, wallet *models.Wallet, balance decimal.Decimal) error {
	return t.r.UpdateBalance(ctx, wallet, balance)
}

func (t *fakeWalletTx) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return t.r.CreateTransaction(ctx, tx)
}

func (t *fakeWalletTx) ExecuteInTransaction(fn func(tx repositories.WalletRepository) error) error {
	return fn(t)
}

func (r *fakeWalletRepo) balance(id uint) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wallets[id].Balance
}

func (r *fakeWalletRepo) txCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transactions)
}

type fakeCharger struct {
	provider *models.Provider
	result   gateway.ChargeResult
	err      error
	lastReq  gateway.ChargeRequest
	calls    int
}

func (c *fakeCharger) Charge(_ context.Context, _ string, req gateway.ChargeRequest) (*models.Provider, gateway.ChargeResult, error) {
	c.calls++
	c.lastReq = req
	return c.provider, c.result, c.err
}

type fakeSnapshots struct {
	mu        sync.Mutex
	users     map[uint]decimal.Decimal
	merchants map[uint]decimal.Decimal
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{
		users:     make(map[uint]decimal.Decimal),
		merchants: make(map[uint]decimal.Decimal),
	}
}

func (s *fakeSnapshots) UpdateUserBalanceSnapshot(_ context.Context, userID uint, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = balance
	return nil
}

func (s *fakeSnapshots) UpdateMerchantBalanceSnapshot(_ context.Context, merchantID uint, balance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merchants[merchantID] = balance
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	wallets     map[uint]*models.Wallet
	invalidated []uint
}

func newFakeCache() *fakeCache {
	return &fakeCache{wallets: make(map[uint]*models.Wallet)}
}

func (c *fakeCache) GetWallet(_ context.Context, walletID uint) (*models.Wallet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w, ok := c.wallets[walletID]; ok {
		return w, nil
	}
	return nil, errors.New("cache miss")
}

func (c *fakeCache) SetWallet(_ context.Context, wallet *models.Wallet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wallets[wallet.ID] = wallet
	return nil
}

func (c *fakeCache) InvalidateWallets(_ context.Context, walletIDs ...uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range walletIDs {
		delete(c.wallets, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

func money(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func userWallet(id, userID uint, number, balance string) *models.Wallet {
	uid := userID
	return &models.Wallet{
		ID:           id,
		UserID:       &uid,
		WalletNumber: number,
		Balance:      money(balance),
		Currency:     "USD",
		Status:       "active",
	}
}

type ledgerFixture struct {
	repo      *fakeWalletRepo
	charger   *fakeCharger
	snapshots *fakeSnapshots
	cache     *fakeCache
	service   Service
}

func newLedgerFixture(wallets ...*models.Wallet) *ledgerFixture {
	f := &ledgerFixture{
		repo: newFakeWalletRepo(wallets...),
		charger: &fakeCharger{
			provider: &models.Provider{ID: 1, Name: models.ProviderMockBank, Enabled: true},
			result:   gateway.ChargeResult{Success: true, ProviderRef: "ref_ok"},
		},
		snapshots: newFakeSnapshots(),
		cache:     newFakeCache(),
	}
	f.service = NewService(
		f.repo,
		f.snapshots,
		f.charger,
		categorizer.NewRuleCategorizer(),
		f.cache,
		events.NoopPublisher{},
		Config{DefaultCurrency: "USD"},
	)
	return f
}

func TestPayMovesBalanceAndRecordsTransaction(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "100.00"),
		userWallet(2, 20, "KP-0002", "0.00"),
	)

	tx, err := f.service.Pay(context.Background(), PayRequest{
		FromWalletID: 1,
		ToWalletID:   2,
		Amount:       money("30.00"),
		Item:         "Coffee",
	})
	require.NoError(t, err)

	assert.True(t, f.repo.balance(1).Equal(money("70.00")))
	assert.True(t, f.repo.balance(2).Equal(money("30.00")))

	require.NotNil(t, tx)
	assert.Equal(t, models.TransactionTypePay, tx.Type)
	assert.Equal(t, models.TransactionStatusSuccess, tx.Status)
	assert.Equal(t, models.PayModeStandard, tx.Mode)
	require.NotNil(t, tx.SourceWalletID)
	require.NotNil(t, tx.DestWalletID)
	assert.Equal(t, uint(1), *tx.SourceWalletID)
	assert.Equal(t, uint(2), *tx.DestWalletID)
	assert.NotEmpty(t, tx.Category)
}

func TestPayConservesTotalBalance(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "100.00"),
		userWallet(2, 20, "KP-0002", "55.50"),
	)
	before := f.repo.balance(1).Add(f.repo.balance(2))

	_, err := f.service.Pay(context.Background(), PayRequest{
		FromWalletID: 1,
		ToWalletID:   2,
		Amount:       money("42.13"),
	})
	require.NoError(t, err)

	after := f.repo.balance(1).Add(f.repo.balance(2))
	assert.True(t, before.Equal(after), "total balance changed: %s -> %s", before, after)
}

func TestPayInsufficientBalanceLeavesEverythingUntouched(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "10.00"),
		userWallet(2, 20, "KP-0002", "0.00"),
	)

	_, err := f.service.Pay(context.Background(), PayRequest{
		FromWalletID: 1,
		ToWalletID:   2,
		Amount:       money("10.01"),
	})
	require.ErrorIs(t, err, kerrors.ErrInsufficientBalance)

	assert.True(t, f.repo.balance(1).Equal(money("10.00")))
	assert.True(t, f.repo.balance(2).Equal(money("0.00")))
	assert.Zero(t, f.repo.txCount())
}

func TestPayRejectsNonPositiveAmounts(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "100.00"),
		userWallet(2, 20, "KP-0002", "0.00"),
	)

	for _, amount := range []string{"0", "-5.00"} {
		_, err := f.service.Pay(context.Background(), PayRequest{
			FromWalletID: 1,
			ToWalletID:   2,
			Amount:       money(amount),
		})
		assert.ErrorIs(t, err, kerrors.ErrInvalidAmount, "amount %s", amount)
	}
	assert.Zero(t, f.repo.txCount())
}

func TestPayRejectsSelfPayment(t *testing.T) {
	f := newLedgerFixture(userWallet(1, 10, "KP-0001", "100.00"))

	_, err := f.service.Pay(context.Background(), PayRequest{
		FromWalletID: 1,
		ToWalletID:   1,
		Amount:       money("5.00"),
	})
	require.ErrorIs(t, err, kerrors.ErrSelfPayment)
	assert.True(t, f.repo.balance(1).Equal(money("100.00")))
}

func TestPayUnknownWallet(t *testing.T) {
	f := newLedgerFixture(userWallet(1, 10, "KP-0001", "100.00"))

	_, err := f.service.Pay(context.Background(), PayRequest{
		FromWalletID: 1,
		ToWalletID:   99,
		Amount:       money("5.00"),
	})
	require.ErrorIs(t, err, kerrors.ErrWalletNotFound)
	assert.True(t, f.repo.balance(1).Equal(money("100.00")))
}

func TestConcurrentPaysNeverOverdraw(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "100.00"),
		userWallet(2, 20, "KP-0002", "0.00"),
	)

	const attempts = 15
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Pay(context.Background(), PayRequest{
				FromWalletID: 1,
				ToWalletID:   2,
				Amount:       money("10.00"),
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, kerrors.ErrInsufficientBalance)
		}
	}

	assert.Equal(t, 10, succeeded)
	assert.True(t, f.repo.balance(1).Equal(money("0.00")))
	assert.True(t, f.repo.balance(2).Equal(money("100.00")))
	assert.False(t, f.repo.balance(1).IsNegative())
}

func TestConcurrentOpposingTransfersDoNotDeadlock(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "50.00"),
		userWallet(2, 20, "KP-0002", "50.00"),
	)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = f.service.Transfer(context.Background(), TransferRequest{
				FromWalletID: 1, ToWalletID: 2, Amount: money("1.00"),
			})
		}()
		go func() {
			defer wg.Done()
			_, _ = f.service.Transfer(context.Background(), TransferRequest{
				FromWalletID: 2, ToWalletID: 1, Amount: money("1.00"),
			})
		}()
	}
	wg.Wait()

	total := f.repo.balance(1).Add(f.repo.balance(2))
	assert.True(t, total.Equal(money("100.00")))
}

func TestTransferAppliesCategoryOverride(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "100.00"),
		userWallet(2, 20, "KP-0002", "0.00"),
	)

	tx, err := f.service.Transfer(context.Background(), TransferRequest{
		FromWalletID:     1,
		ToWalletID:       2,
		Amount:           money("25.00"),
		Memo:             "rent share",
		CategoryOverride: "Utilities",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionTypeTransfer, tx.Type)
	assert.Equal(t, "Utilities", tx.FinalCategory)
	assert.Equal(t, "Utilities", tx.EffectiveCategory())
}

func TestReloadCreditsWalletOnSuccessfulCharge(t *testing.T) {
	f := newLedgerFixture(userWallet(1, 10, "KP-0001", "20.00"))
	f.charger.result = gateway.ChargeResult{Success: true, ProviderRef: "pi_123"}

	tx, err := f.service.Reload(context.Background(), ReloadRequest{
		WalletID:         1,
		Amount:           money("80.00"),
		Provider:         models.ProviderMockBank,
		ExternalSourceID: "pm_card",
	})
	require.NoError(t, err)

	assert.True(t, f.repo.balance(1).Equal(money("100.00")))
	assert.Equal(t, models.TransactionTypeReload, tx.Type)
	assert.Equal(t, "pi_123", tx.SourceRef)
	require.NotNil(t, tx.ProviderID)
	assert.Equal(t, uint(1), *tx.ProviderID)
	require.NotNil(t, tx.DestWalletID)
	assert.Equal(t, uint(1), *tx.DestWalletID)

	assert.Equal(t, 1, f.charger.calls)
	assert.Equal(t, uint(1), f.charger.lastReq.WalletID)
	assert.NotEmpty(t, f.charger.lastReq.Reference)
}

func TestReloadDeclinePreservesProviderReason(t *testing.T) {
	f := newLedgerFixture(userWallet(1, 10, "KP-0001", "20.00"))
	f.charger.result = gateway.ChargeResult{
		Success:      false,
		ErrorMessage: "Your card was declined.",
		ProviderRef:  "pi_failed",
	}

	_, err := f.service.Reload(context.Background(), ReloadRequest{
		WalletID:         1,
		Amount:           money("80.00"),
		Provider:         models.ProviderMockBank,
		ExternalSourceID: "pm_card",
	})
	require.ErrorIs(t, err, kerrors.ErrProviderCharge)
	assert.Contains(t, err.Error(), "Your card was declined.")

	assert.True(t, f.repo.balance(1).Equal(money("20.00")))
	assert.Zero(t, f.repo.txCount())
}

func TestReloadRejectsNonPositiveAmount(t *testing.T) {
	f := newLedgerFixture(userWallet(1, 10, "KP-0001", "20.00"))

	_, err := f.service.Reload(context.Background(), ReloadRequest{
		WalletID: 1,
		Amount:   money("0"),
		Provider: models.ProviderMockBank,
	})
	require.ErrorIs(t, err, kerrors.ErrInvalidAmount)
	assert.Zero(t, f.charger.calls, "provider must not be called for invalid amounts")
}

func TestReloadUnknownWalletNeverReachesProvider(t *testing.T) {
	f := newLedgerFixture()

	_, err := f.service.Reload(context.Background(), ReloadRequest{
		WalletID: 42,
		Amount:   money("10.00"),
		Provider: models.ProviderMockBank,
	})
	require.ErrorIs(t, err, kerrors.ErrWalletNotFound)
	assert.Zero(t, f.charger.calls)
}

func TestPayQRModeResolvesDestinationAndAmount(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "100.00"),
		userWallet(2, 20, "KP-0002", "0.00"),
	)

	payload := EncodeQRPayload(QRPayload{
		WalletNumber: "KP-0002",
		Amount:       "12.50",
		Exp:          time.Now().Add(time.Minute).Unix(),
	})

	tx, err := f.service.Pay(context.Background(), PayRequest{
		FromWalletID: 1,
		Mode:         models.PayModeQR,
		QRPayload:    payload,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PayModeQR, tx.Mode)
	assert.True(t, tx.Amount.Equal(money("12.50")))
	require.NotNil(t, tx.DestWalletID)
	assert.Equal(t, uint(2), *tx.DestWalletID)
	assert.True(t, f.repo.balance(2).Equal(money("12.50")))
}

func TestPayQRModeExplicitAmountWins(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "100.00"),
		userWallet(2, 20, "KP-0002", "0.00"),
	)

	payload := EncodeQRPayload(QRPayload{WalletNumber: "KP-0002", Amount: "99.00"})

	tx, err := f.service.Pay(context.Background(), PayRequest{
		FromWalletID: 1,
		Amount:       money("5.00"),
		Mode:         models.PayModeQR,
		QRPayload:    payload,
	})
	require.NoError(t, err)

	assert.True(t, tx.Amount.Equal(money("5.00")))
	assert.Equal(t, "qr declared 99.00", tx.Detail)
	assert.True(t, f.repo.balance(2).Equal(money("5.00")))

	tx, err = f.service.Pay(context.Background(), PayRequest{
		FromWalletID: 1,
		Amount:       money("5.00"),
		Mode:         models.PayModeQR,
		QRPayload:    payload,
		Memo:         "lunch",
	})
	require.NoError(t, err)
	assert.Equal(t, "lunch (qr declared 99.00)", tx.Detail)
}

func TestPayQRModeExpiredCode(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "100.00"),
		userWallet(2, 20, "KP-0002", "0.00"),
	)

	payload := EncodeQRPayload(QRPayload{
		WalletNumber: "KP-0002",
		Amount:       "12.50",
		Exp:          time.Now().Add(-time.Minute).Unix(),
	})

	_, err := f.service.Pay(context.Background(), PayRequest{
		FromWalletID: 1,
		Mode:         models.PayModeQR,
		QRPayload:    payload,
	})
	require.ErrorIs(t, err, kerrors.ErrQRExpired)
	assert.True(t, f.repo.balance(1).Equal(money("100.00")))
	assert.Zero(t, f.repo.txCount())
}

func TestPaySyncsOwnerSnapshotsAndInvalidatesCache(t *testing.T) {
	f := newLedgerFixture(
		userWallet(1, 10, "KP-0001", "100.00"),
		userWallet(2, 20, "KP-0002", "0.00"),
	)

	_, err := f.service.Pay(context.Background(), PayRequest{
		FromWalletID: 1,
		ToWalletID:   2,
		Amount:       money("30.00"),
	})
	require.NoError(t, err)

	assert.True(t, f.snapshots.users[10].Equal(money("70.00")))
	assert.True(t, f.snapshots.users[20].Equal(money("30.00")))
	assert.ElementsMatch(t, []uint{1, 2}, f.cache.invalidated)
}

func TestSyncOwnerBalanceSnapshotForMerchantWallet(t *testing.T) {
	mid := uint(7)
	f := newLedgerFixture(&models.Wallet{
		ID:           3,
		MerchantID:   &mid,
		WalletNumber: "KP-M-0003",
		Balance:      money("250.00"),
		Currency:     "USD",
	})

	require.NoError(t, f.service.SyncOwnerBalanceSnapshot(context.Background(), 3))
	assert.True(t, f.snapshots.merchants[7].Equal(money("250.00")))
}

func TestGetWalletPopulatesAndServesCache(t *testing.T) {
	f := newLedgerFixture(userWallet(1, 10, "KP-0001", "100.00"))

	first, err := f.service.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, first.Balance.Equal(money("100.00")))

	// Mutate the store behind the cache; the cached copy must be served.
	require.NoError(t, f.repo.UpdateBalance(context.Background(), first, money("1.00")))

	second, err := f.service.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, second.Balance.Equal(money("100.00")))
}

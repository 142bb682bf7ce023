package auth

import (
	"context"
	"testing"

	"kopa/internal/models"
	"kopa/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOwnerRepo struct {
	users  map[string]*models.User
	nextID uint
}

func newFakeOwnerRepo() *fakeOwnerRepo {
	return &fakeOwnerRepo{users: make(map[string]*models.User)}
}

func (r *fakeOwnerRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrOwnerNotFound
}

func (r *fakeOwnerRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, repositories.ErrOwnerNotFound
}

func (r *fakeOwnerRepo) CreateUser(_ context.Context, user *models.User) error {
	r.nextID++
	user.ID = r.nextID
	r.users[user.Email] = user
	return nil
}

func (r *fakeOwnerRepo) GetMerchantByName(context.Context, string) (*models.Merchant, error) {
	return nil, repositories.ErrOwnerNotFound
}

func (r *fakeOwnerRepo) CreateMerchant(context.Context, *models.Merchant) error { return nil }

func (r *fakeOwnerRepo) UpdateUserBalanceSnapshot(context.Context, uint, decimal.Decimal) error {
	return nil
}

func (r *fakeOwnerRepo) UpdateMerchantBalanceSnapshot(context.Context, uint, decimal.Decimal) error {
	return nil
}

func (r *fakeOwnerRepo) FindUser(_ context.Context, _, email, _ string) (*models.User, error) {
	return r.GetUserByEmail(context.Background(), email)
}

type fakeWalletCreator struct {
	created []*models.Wallet
}

func (r *fakeWalletCreator) Create(wallet *models.Wallet) error {
	wallet.ID = uint(len(r.created) + 1)
	r.created = append(r.created, wallet)
	return nil
}

func (r *fakeWalletCreator) GetByID(context.Context, uint) (*models.Wallet, error) {
	return nil, repositories.ErrWalletNotFound
}

func (r *fakeWalletCreator) GetByNumber(context.Context, string) (*models.Wallet, error) {
	return nil, repositories.ErrWalletNotFound
}

func (r *fakeWalletCreator) GetByUserID(context.Context, uint) (*models.Wallet, error) {
	return nil, repositories.ErrWalletNotFound
}

func (r *fakeWalletCreator) GetByMerchantID(context.Context, uint) (*models.Wallet, error) {
	return nil, repositories.ErrWalletNotFound
}

func (r *fakeWalletCreator) GetByIDForUpdate(context.Context, uint) (*models.Wallet, error) {
	return nil, repositories.ErrWalletNotFound
}

func (r *fakeWalletCreator) UpdateBalance(context.Context, *models.Wallet, decimal.Decimal) error {
	return nil
}

func (r *fakeWalletCreator) CreateTransaction(context.Context, *models.Transaction) error {
	return nil
}

func (r *fakeWalletCreator) ExecuteInTransaction(fn func(tx repositories.WalletRepository) error) error {
	return fn(r)
}

func TestRegisterProvisionsWallet(t *testing.T) {
	owners := newFakeOwnerRepo()
	wallets := &fakeWalletCreator{}
	svc := NewService(owners, wallets, "USD")

	user, wallet, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "correct horse", user.Password, "password must be stored hashed")

	require.Len(t, wallets.created, 1)
	require.NotNil(t, wallet.UserID)
	assert.Equal(t, user.ID, *wallet.UserID)
	assert.Equal(t, "USD", wallet.Currency)
	assert.True(t, wallet.Balance.IsZero())
	assert.NotEmpty(t, wallet.WalletNumber)
}

func TestRegisterRejectsDuplicateEmailAndWeakPassword(t *testing.T) {
	owners := newFakeOwnerRepo()
	svc := NewService(owners, &fakeWalletCreator{}, "USD")

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email: "bob@example.com", Password: "short",
	})
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, _, err = svc.Register(context.Background(), RegisterRequest{
		Email: "bob@example.com", Password: "long enough",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), RegisterRequest{
		Email: "bob@example.com", Password: "long enough",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginIssuesParsableToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	owners := newFakeOwnerRepo()
	svc := NewService(owners, &fakeWalletCreator{}, "USD")

	registered, _, err := svc.Register(context.Background(), RegisterRequest{
		Email: "carol@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "carol@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	owners := newFakeOwnerRepo()
	svc := NewService(owners, &fakeWalletCreator{}, "USD")

	_, _, err := svc.Register(context.Background(), RegisterRequest{
		Email: "dave@example.com", Password: "correct horse",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "dave@example.com", "wrong horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

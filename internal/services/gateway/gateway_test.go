package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kerrors "kopa/internal/errors"
	"kopa/internal/models"
	"kopa/internal/repositories"
	"kopa/internal/vault"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProviderRepo struct {
	providers map[string]*models.Provider
}

func (f *fakeProviderRepo) GetByName(_ context.Context, name string) (*models.Provider, error) {
	p, ok := f.providers[name]
	if !ok {
		return nil, repositories.ErrProviderNotFound
	}
	return p, nil
}

func (f *fakeProviderRepo) ListEnabled(_ context.Context) ([]models.Provider, error) {
	var out []models.Provider
	for _, p := range f.providers {
		if p.Enabled {
			out = append(out, *p)
		}
	}
	return out, nil
}

func testVault(t *testing.T) *vault.Vault {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	v, err := vault.New(key)
	require.NoError(t, err)
	return v
}

func sealedCreds(t *testing.T, v *vault.Vault) []byte {
	t.Helper()
	plain, err := json.Marshal(Credentials{SecretKey: "sk_test_123"})
	require.NoError(t, err)
	sealed, err := v.Seal(plain)
	require.NoError(t, err)
	return sealed
}

func newTestRegistry(t *testing.T, providers map[string]*models.Provider) *Registry {
	t.Helper()
	v := testVault(t)
	for _, p := range providers {
		if p.Credentials == nil {
			p.Credentials = sealedCreds(t, v)
		}
	}
	r := NewRegistry(&fakeProviderRepo{providers: providers}, v, time.Second)
	r.Register(models.ProviderMockBank, NewMockBankGateway(time.Millisecond))
	return r
}

func TestRegistryChargeMockBank(t *testing.T) {
	registry := newTestRegistry(t, map[string]*models.Provider{
		models.ProviderMockBank: {ID: 1, Name: models.ProviderMockBank, Enabled: true},
	})

	provider, result, err := registry.Charge(context.Background(), models.ProviderMockBank, ChargeRequest{
		ExternalSourceID: "acct_1",
		Amount:           decimal.RequireFromString("25.00"),
		Currency:         "USD",
		WalletID:         9,
		Reference:        "ref-1",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), provider.ID)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.ProviderRef)
}

func TestRegistryProviderNotFound(t *testing.T) {
	registry := newTestRegistry(t, map[string]*models.Provider{})

	_, _, err := registry.Charge(context.Background(), "Nope", ChargeRequest{})
	assert.ErrorIs(t, err, kerrors.ErrProviderNotFound)
}

func TestRegistryProviderDisabled(t *testing.T) {
	registry := newTestRegistry(t, map[string]*models.Provider{
		models.ProviderMockBank: {ID: 1, Name: models.ProviderMockBank, Enabled: false},
	})

	_, _, err := registry.Charge(context.Background(), models.ProviderMockBank, ChargeRequest{})
	assert.ErrorIs(t, err, kerrors.ErrProviderDisabled)
}

func TestRegistryUnregisteredRail(t *testing.T) {
	registry := newTestRegistry(t, map[string]*models.Provider{
		"Ghost": {ID: 2, Name: "Ghost", Enabled: true},
	})

	_, _, err := registry.Charge(context.Background(), "Ghost", ChargeRequest{})
	assert.ErrorIs(t, err, kerrors.ErrProviderNotFound)
}

func TestRegistryBadCredentials(t *testing.T) {
	registry := newTestRegistry(t, map[string]*models.Provider{
		models.ProviderMockBank: {
			ID:          1,
			Name:        models.ProviderMockBank,
			Enabled:     true,
			Credentials: []byte("not sealed material"),
		},
	})

	_, _, err := registry.Charge(context.Background(), models.ProviderMockBank, ChargeRequest{})
	assert.ErrorIs(t, err, kerrors.ErrCredentialDecryption)
}

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     int64
	}{
		{"10.00", "USD", 1000},
		{"0.01", "USD", 1},
		{"125.50", "EUR", 12550},
		{"500", "JPY", 500},
	}

	for _, tt := range tests {
		t.Run(tt.amount+" "+tt.currency, func(t *testing.T) {
			got := MinorUnits(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.want, got)

			back := FromMinorUnits(got, tt.currency)
			assert.True(t, back.Equal(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestMockBankRespectsCancellation(t *testing.T) {
	gw := NewMockBankGateway(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Charge(ctx, Credentials{}, ChargeRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

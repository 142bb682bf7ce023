// Package gateway abstracts external money-movement providers behind one
// charge contract. Concrete rails register under their provider's stable
// name; the ledger resolves them through the Registry at call time.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	kerrors "kopa/internal/errors"
	"kopa/internal/models"
	"kopa/internal/repositories"
	"kopa/internal/vault"

	"github.com/shopspring/decimal"
)

// Credentials is the decrypted credential material for one charge call.
// It must not be retained beyond the call scope.
type Credentials struct {
	SecretKey string `json:"secret_key"`
}

// ChargeRequest describes one external charge attempt. Reference is the
// ledger-assigned idempotency token binding the charge to this operation.
type ChargeRequest struct {
	ExternalSourceID string
	Amount           decimal.Decimal
	Currency         string
	WalletID         uint
	Reference        string
}

// ChargeResult is the normalized provider outcome. ProviderRef is kept on
// failures that need client-side follow-up so callers can reconcile.
type ChargeResult struct {
	Success      bool
	ErrorMessage string
	ProviderRef  string
}

// Gateway is one concrete payment rail.
type Gateway interface {
	Charge(ctx context.Context, creds Credentials, req ChargeRequest) (ChargeResult, error)
	BalanceQuery(ctx context.Context, creds Credentials) (decimal.Decimal, error)
}

// Registry resolves enabled providers by stable name and dispatches
// charges to the registered rail. Gateways are registered once at startup;
// no reflection or name switching at call time.
type Registry struct {
	providers repositories.ProviderRepository
	vault     *vault.Vault
	gateways  map[string]Gateway
	timeout   time.Duration
}

func NewRegistry(providers repositories.ProviderRepository, v *vault.Vault, timeout time.Duration) *Registry {
	if providers == nil {
		panic("provider repository is required")
	}
	if v == nil {
		panic("vault is required")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Registry{
		providers: providers,
		vault:     v,
		gateways:  make(map[string]Gateway),
		timeout:   timeout,
	}
}

// Register binds a rail implementation to a provider name.
func (r *Registry) Register(name string, gw Gateway) {
	r.gateways[name] = gw
}

// Charge resolves the named provider, decrypts its credentials for the
// scope of this call, and submits the charge with a bounded timeout.
func (r *Registry) Charge(ctx context.Context, providerName string, req ChargeRequest) (*models.Provider, ChargeResult, error) {
	provider, err := r.providers.GetByName(ctx, providerName)
	if err != nil {
		if errors.Is(err, repositories.ErrProviderNotFound) {
			return nil, ChargeResult{}, kerrors.ErrProviderNotFound
		}
		return nil, ChargeResult{}, err
	}
	if !provider.Enabled {
		return nil, ChargeResult{}, kerrors.ErrProviderDisabled
	}

	gw, ok := r.gateways[provider.Name]
	if !ok {
		return nil, ChargeResult{}, kerrors.ErrProviderNotFound
	}

	creds, err := r.decryptCredentials(provider)
	if err != nil {
		return nil, ChargeResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	result, err := gw.Charge(ctx, creds, req)
	if err != nil {
		return provider, ChargeResult{}, err
	}
	return provider, result, nil
}

func (r *Registry) decryptCredentials(provider *models.Provider) (Credentials, error) {
	plaintext, err := r.vault.Open(provider.Credentials)
	if err != nil {
		return Credentials{}, kerrors.ErrCredentialDecryption
	}
	var creds Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return Credentials{}, kerrors.ErrCredentialDecryption
	}
	return creds, nil
}

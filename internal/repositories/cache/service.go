// Package cache provides the advisory Redis read cache for wallet rows.
// The database is authoritative; every failure here is safe to swallow.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kopa/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates the key was absent.
var ErrCacheMiss = errors.New("cache miss")

const walletKeyPrefix = "wallet:id:"

// Service wraps a Redis client with wallet-aware helpers.
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

func NewService(client *redis.Client, defaultTTL time.Duration) *Service {
	return &Service{client: client, ttl: defaultTTL}
}

func (s *Service) walletKey(walletID uint) string {
	return fmt.Sprintf("%s%d", walletKeyPrefix, walletID)
}

// GetWallet returns the cached wallet or ErrCacheMiss.
func (s *Service) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	data, err := s.client.Get(ctx, s.walletKey(walletID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cached wallet: %w", err)
	}
	var wallet models.Wallet
	if err := json.Unmarshal(data, &wallet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached wallet: %w", err)
	}
	return &wallet, nil
}

// SetWallet stores the wallet under its id key.
func (s *Service) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	if wallet == nil {
		return errors.New("cannot cache nil wallet")
	}
	data, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %w", err)
	}
	return s.client.Set(ctx, s.walletKey(wallet.ID), data, s.ttl).Err()
}

// InvalidateWallets drops the cached entries after a ledger commit.
func (s *Service) InvalidateWallets(ctx context.Context, walletIDs ...uint) error {
	keys := make([]string, 0, len(walletIDs))
	for _, id := range walletIDs {
		keys = append(keys, s.walletKey(id))
	}
	return s.client.Del(ctx, keys...).Err()
}

// FlushAll clears the cache, used on startup.
func (s *Service) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

// Close releases the underlying client.
func (s *Service) Close() error {
	return s.client.Close()
}

package repositories

import (
	"context"
	"time"

	"kopa/internal/models"

	"github.com/shopspring/decimal"
)

// TransactionFilter narrows a transaction scan. Zero values mean "any".
type TransactionFilter struct {
	WalletID uint
	Status   string
	Type     string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// DailyVolume is one point of a report's daily series.
type DailyVolume struct {
	Date   string
	Volume decimal.Decimal
	Count  int64
}

// MonthlyStats are the scalar aggregates for one report window.
type MonthlyStats struct {
	TotalVolume     decimal.Decimal
	TxCount         int64
	ActiveUsers     int64
	ActiveMerchants int64
}

// TransactionRepository is the append-biased record store. Transactions
// are never deleted; OverrideCategory is the only post-insert mutation.
type TransactionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	Scan(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error)
	OverrideCategory(ctx context.Context, id uint, category string) error

	// Report aggregation reads. Only success-status transactions within
	// [start, end) are counted; walletIDs nil means unscoped.
	DailyVolumes(ctx context.Context, start, end time.Time, walletIDs []uint) ([]DailyVolume, error)
	MonthlyStats(ctx context.Context, start, end time.Time, walletIDs []uint) (*MonthlyStats, error)
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kopa/internal/models"

	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidTransaction
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *transactionRepository) Scan(ctx context.Context, filter TransactionFilter) ([]models.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&models.Transaction{})

	if filter.WalletID != 0 {
		q = q.Where("source_wallet_id = ? OR dest_wallet_id = ?", filter.WalletID, filter.WalletID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at < ?", filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var txs []models.Transaction
	err := q.Order("created_at DESC").Offset(filter.Offset).Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}
	return txs, nil
}

// OverrideCategory sets the final category on a recorded transaction.
// Amount, parties, and status are immutable after insert.
func (r *transactionRepository) OverrideCategory(ctx context.Context, id uint, category string) error {
	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"final_category": category,
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to override category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransaction
	}
	return nil
}

func (r *transactionRepository) scoped(ctx context.Context, start, end time.Time, walletIDs []uint) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("status = ?", models.TransactionStatusSuccess).
		Where("created_at >= ? AND created_at < ?", start, end)
	if walletIDs != nil {
		q = q.Where("source_wallet_id IN ? OR dest_wallet_id IN ?", walletIDs, walletIDs)
	}
	return q
}

func (r *transactionRepository) DailyVolumes(ctx context.Context, start, end time.Time, walletIDs []uint) ([]DailyVolume, error) {
	var results []DailyVolume
	err := r.scoped(ctx, start, end, walletIDs).
		Select("DATE(created_at) as date, COALESCE(SUM(amount), 0) as volume, COUNT(*) as count").
		Group("DATE(created_at)").
		Order("date").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily volumes: %w", err)
	}
	return results, nil
}

func (r *transactionRepository) MonthlyStats(ctx context.Context, start, end time.Time, walletIDs []uint) (*MonthlyStats, error) {
	var stats MonthlyStats
	err := r.scoped(ctx, start, end, walletIDs).
		Select("COALESCE(SUM(amount), 0) as total_volume, COUNT(*) as tx_count").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly stats: %w", err)
	}

	// Distinct owner counts come from the participating wallet rows,
	// restricted to the same transaction set as the scalar aggregates.
	ownerCounts := `
		SELECT
			COUNT(DISTINCT w.user_id)     as active_users,
			COUNT(DISTINCT w.merchant_id) as active_merchants
		FROM transactions t
		JOIN wallets w ON w.id = t.source_wallet_id OR w.id = t.dest_wallet_id
		WHERE t.status = ? AND t.created_at >= ? AND t.created_at < ?`
	args := []interface{}{models.TransactionStatusSuccess, start, end}
	if walletIDs != nil {
		ownerCounts += ` AND (t.source_wallet_id IN ? OR t.dest_wallet_id IN ?)`
		args = append(args, walletIDs, walletIDs)
	}
	var owners struct {
		ActiveUsers     int64
		ActiveMerchants int64
	}
	err = r.db.WithContext(ctx).
		Raw(ownerCounts, args...).
		Scan(&owners).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count active owners: %w", err)
	}
	stats.ActiveUsers = owners.ActiveUsers
	stats.ActiveMerchants = owners.ActiveMerchants
	return &stats, nil
}

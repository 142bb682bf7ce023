package repositories

import (
	"context"
	"errors"
	"fmt"

	"kopa/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrReportNotFound = errors.New("report not found")

// ReportRepository caches generated monthly charts. Upsert overwrites the
// previous chart and PDF key for the same (role, month, requester).
type ReportRepository interface {
	Upsert(ctx context.Context, chart *models.ReportChart) error
	Get(ctx context.Context, role, month string, requesterID uint) (*models.ReportChart, error)
	GetByID(ctx context.Context, id uint) (*models.ReportChart, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Upsert(ctx context.Context, chart *models.ReportChart) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role"}, {Name: "month"}, {Name: "requester_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"chart", "pdf_key", "generated_at"}),
		}).
		Create(chart).Error
	if err != nil {
		return fmt.Errorf("failed to upsert report chart: %w", err)
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, role, month string, requesterID uint) (*models.ReportChart, error) {
	var chart models.ReportChart
	err := r.db.WithContext(ctx).
		Where("role = ? AND month = ? AND requester_id = ?", role, month, requesterID).
		First(&chart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report chart: %w", err)
	}
	return &chart, nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.ReportChart, error) {
	var chart models.ReportChart
	if err := r.db.WithContext(ctx).First(&chart, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report chart: %w", err)
	}
	return &chart, nil
}

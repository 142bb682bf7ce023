// Package report builds and caches monthly activity charts over the
// transaction record store.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	kerrors "kopa/internal/errors"
	"kopa/internal/models"
	"kopa/internal/repositories"
	"kopa/internal/storage"

	"github.com/shopspring/decimal"
)

// Service builds monthly charts and serves their rendered documents.
type Service interface {
	// BuildMonthlyChart aggregates the month and upserts the cached chart
	// for (role, month, requesterID). Regenerating overwrites the
	// previous chart and document for the same key.
	BuildMonthlyChart(ctx context.Context, role string, requesterID uint, month string) (*models.ReportChart, error)

	// GetMonthlyChart returns the cached chart, building it on a miss.
	GetMonthlyChart(ctx context.Context, role string, requesterID uint, month string) (*models.ReportChart, error)

	// DownloadPDF returns the rendered document bytes for a report.
	DownloadPDF(ctx context.Context, reportID uint) ([]byte, error)
}

type service struct {
	transactions repositories.TransactionRepository
	reports      repositories.ReportRepository
	wallets      repositories.WalletRepository
	blobs        storage.BlobStore
	renderer     Renderer
}

// NewService creates the report service. Renderer and blob store may be
// nil, in which case charts are built without a downloadable document.
func NewService(
	transactions repositories.TransactionRepository,
	reports repositories.ReportRepository,
	wallets repositories.WalletRepository,
	blobs storage.BlobStore,
	renderer Renderer,
) Service {
	if transactions == nil {
		panic("transaction repository is required")
	}
	if reports == nil {
		panic("report repository is required")
	}
	if wallets == nil {
		panic("wallet repository is required")
	}
	return &service{
		transactions: transactions,
		reports:      reports,
		wallets:      wallets,
		blobs:        blobs,
		renderer:     renderer,
	}
}

func (s *service) BuildMonthlyChart(ctx context.Context, role string, requesterID uint, month string) (*models.ReportChart, error) {
	start, end, err := monthWindow(month)
	if err != nil {
		return nil, err
	}

	walletIDs, err := s.scopeWalletIDs(ctx, role, requesterID)
	if err != nil {
		return nil, err
	}

	daily, err := s.transactions.DailyVolumes(ctx, start, end, walletIDs)
	if err != nil {
		return nil, mapReportErr(err)
	}
	stats, err := s.transactions.MonthlyStats(ctx, start, end, walletIDs)
	if err != nil {
		return nil, mapReportErr(err)
	}
	categories, err := s.categoryTotals(ctx, start, end, walletIDs)
	if err != nil {
		return nil, mapReportErr(err)
	}

	data := ChartData{
		Month:           month,
		Role:            role,
		TotalVolume:     stats.TotalVolume.StringFixed(2),
		TxCount:         stats.TxCount,
		AvgTx:           avgTx(stats),
		ActiveUsers:     stats.ActiveUsers,
		ActiveMerchants: stats.ActiveMerchants,
		Daily:           make([]DailyPoint, 0, len(daily)),
		Categories:      categories,
	}
	for _, d := range daily {
		data.Daily = append(data.Daily, DailyPoint{
			Date:   d.Date,
			Volume: d.Volume.StringFixed(2),
			Count:  d.Count,
		})
	}

	chartJSON, err := toJSONMap(data)
	if err != nil {
		return nil, mapReportErr(err)
	}

	record := &models.ReportChart{
		Role:        role,
		Month:       month,
		RequesterID: requesterID,
		Chart:       chartJSON,
		PDFKey:      s.renderAndStore(ctx, role, requesterID, month, data),
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.reports.Upsert(ctx, record); err != nil {
		return nil, mapReportErr(err)
	}

	// Upsert may have updated an existing row; re-read so the caller
	// gets the canonical record with its id.
	stored, err := s.reports.Get(ctx, role, month, requesterID)
	if err != nil {
		return nil, mapReportErr(err)
	}
	return stored, nil
}

func (s *service) GetMonthlyChart(ctx context.Context, role string, requesterID uint, month string) (*models.ReportChart, error) {
	if _, _, err := monthWindow(month); err != nil {
		return nil, err
	}
	chart, err := s.reports.Get(ctx, role, month, requesterID)
	if err == nil {
		return chart, nil
	}
	if errors.Is(err, repositories.ErrReportNotFound) {
		return s.BuildMonthlyChart(ctx, role, requesterID, month)
	}
	return nil, mapReportErr(err)
}

func (s *service) DownloadPDF(ctx context.Context, reportID uint) ([]byte, error) {
	chart, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, mapReportErr(err)
	}
	if chart.PDFKey == "" || s.blobs == nil {
		return nil, kerrors.ErrReportNotFound
	}
	data, err := s.blobs.Get(ctx, chart.PDFKey)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, kerrors.ErrReportNotFound
		}
		return nil, mapReportErr(err)
	}
	return data, nil
}

// renderAndStore renders the chart document and stores it under a
// deterministic key, so regeneration overwrites the previous document.
// Rendering is best-effort: a failure leaves the chart without a
// download, never fails the build.
func (s *service) renderAndStore(ctx context.Context, role string, requesterID uint, month string, data ChartData) string {
	if s.renderer == nil || s.blobs == nil {
		return ""
	}
	rendered, err := s.renderer.Render(data)
	if err != nil {
		log.Printf("failed to render report %s/%s/%d: %v", role, month, requesterID, err)
		return ""
	}
	key := fmt.Sprintf("reports/%s/%s/%d.pdf", role, month, requesterID)
	if err := s.blobs.Put(ctx, key, rendered); err != nil {
		log.Printf("failed to store report document %s: %v", key, err)
		return ""
	}
	return key
}

// scopeWalletIDs resolves the wallet scope for a role. Nil means the
// whole ledger.
func (s *service) scopeWalletIDs(ctx context.Context, role string, requesterID uint) ([]uint, error) {
	switch role {
	case models.RoleUser:
		wallet, err := s.wallets.GetByUserID(ctx, requesterID)
		if err != nil {
			return nil, mapReportErr(err)
		}
		return []uint{wallet.ID}, nil
	case models.RoleMerchant:
		wallet, err := s.wallets.GetByMerchantID(ctx, requesterID)
		if err != nil {
			return nil, mapReportErr(err)
		}
		return []uint{wallet.ID}, nil
	case models.RoleAdmin, models.RoleThirdParty:
		return nil, nil
	default:
		return nil, kerrors.ErrInvalidReportRequest.WithMessage("unknown report role %q", role)
	}
}

func (s *service) categoryTotals(ctx context.Context, start, end time.Time, walletIDs []uint) (map[string]string, error) {
	scopes := walletIDs
	if scopes == nil {
		scopes = []uint{0}
	}

	totals := make(map[string]decimal.Decimal)
	for _, walletID := range scopes {
		txs, err := s.transactions.Scan(ctx, repositories.TransactionFilter{
			WalletID: walletID,
			Status:   models.TransactionStatusSuccess,
			From:     start,
			To:       end,
		})
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			category := tx.EffectiveCategory()
			totals[category] = totals[category].Add(tx.Amount)
		}
	}

	out := make(map[string]string, len(totals))
	for category, volume := range totals {
		out[category] = volume.StringFixed(2)
	}
	return out, nil
}

// monthWindow parses a YYYY-MM month into its [start, end) UTC window.
func monthWindow(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, kerrors.ErrInvalidReportRequest.WithMessage("month must be YYYY-MM, got %q", month)
	}
	start = start.UTC()
	return start, start.AddDate(0, 1, 0), nil
}

func avgTx(stats *repositories.MonthlyStats) string {
	if stats.TxCount == 0 {
		return "0.00"
	}
	return stats.TotalVolume.Div(decimal.NewFromInt(stats.TxCount)).StringFixed(2)
}

func toJSONMap(data ChartData) (models.JSON, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return models.NewJSON(m), nil
}

func mapReportErr(err error) error {
	var domainErr *kerrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	switch {
	case errors.Is(err, repositories.ErrReportNotFound):
		return kerrors.ErrReportNotFound
	case errors.Is(err, repositories.ErrWalletNotFound):
		return kerrors.ErrWalletNotFound
	}
	log.Printf("report persistence error: %v", err)
	return kerrors.ErrPersistence
}

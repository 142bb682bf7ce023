package models

import "time"

// ReportChart is the cached result of a monthly aggregation run. The
// (role, month, requester) key has upsert-on-regenerate semantics:
// regenerating overwrites the previous chart and PDF for the same key.
type ReportChart struct {
	ID          uint   `gorm:"primarykey"`
	Role        string `gorm:"not null;uniqueIndex:idx_report_key"`
	Month       string `gorm:"not null;uniqueIndex:idx_report_key"` // YYYY-MM
	RequesterID uint   `gorm:"not null;uniqueIndex:idx_report_key"`
	Chart       JSON   `gorm:"type:jsonb"`
	PDFKey      string
	GeneratedAt time.Time
}

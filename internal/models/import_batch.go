package models

import (
	"time"

	"github.com/google/uuid"
)

type ImportBatch struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Filename       string     `json:"filename"`
	ImportedAt     time.Time  `gorm:"index" json:"imported_at"`
	TotalRecords   int        `json:"total_records"`
	ProcessedCount int        `json:"processed_count"`
	Status         string     `json:"status"`
	IsDeleted      bool       `gorm:"index" json:"is_deleted"`
	CompletedAt    *time.Time `json:"completed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Label is the display name used for trend axis points.
func (b ImportBatch) Label() string {
	if b.Filename != "" {
		return b.Filename
	}
	return b.ImportedAt.Format("2006-01-02")
}
